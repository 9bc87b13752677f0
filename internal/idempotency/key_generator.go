package idempotency

import "strconv"

// UpdateKey builds the dedupe key for a Telegram update. Update ids are unique
// per bot, so botID keeps several bots sharing one Redis apart.
func UpdateKey(botID int64, updateID int) string {
	return "update:" + strconv.FormatInt(botID, 10) + ":" + strconv.Itoa(updateID)
}
