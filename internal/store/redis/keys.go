package redis

const (
	// KeyMirrors holds the last discovered mirror list
	KeyMirrors = "airwave:mirrors"
)

// MirrorsKey returns the Redis key for the mirror list
func MirrorsKey() string {
	return KeyMirrors
}
