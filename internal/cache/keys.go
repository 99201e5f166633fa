package cache

import "fmt"

func HistoryKey(username string) string {
	return fmt.Sprintf("history:%s", username)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
