package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func ImageryApiUrl() string {
	return os.Getenv("IMAGERY_API_URL")
}
func ImageryClientId() string {
	return os.Getenv("IMAGERY_CLIENT_ID")
}
func ImageryClientSecret() string {
	return os.Getenv("IMAGERY_CLIENT_SECRET")
}
func ImageryTokenUrl() string {
	return os.Getenv("IMAGERY_TOKEN_URL")
}
