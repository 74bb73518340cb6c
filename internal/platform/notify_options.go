package platform

// AppName identifies the sender to the notification daemon.
const AppName = "screengrabber"

const defaultTimeoutMillis = 5000

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// ReplacesID updates an earlier notification in place instead of
	// stacking a new one.
	ReplacesID uint32
	// TimeoutMillis overrides the expiry; zero keeps the default.
	TimeoutMillis int32
}

func (o Options) timeout() int32 {
	if o.TimeoutMillis > 0 {
		return o.TimeoutMillis
	}
	return defaultTimeoutMillis
}
