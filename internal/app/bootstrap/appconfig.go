// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from config files, STRATAREFER_* environment variables or
// command-line flags (see LoadConfig). Framework settings such as ports,
// TLS, log level and CORS live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Admin session cookie
	SessionKey           string
	SessionName          string
	SessionDomain        string
	SessionMaxAge        time.Duration
	SessionRefreshWindow time.Duration // re-issue the cookie when this close to expiry

	CSRFKey string

	// TrustProxy makes login logs read the client IP from X-Forwarded-For.
	TrustProxy bool

	// Résumé storage: "local" or "s3"
	StorageType      string
	StorageLocalPath string
	StorageLocalURL  string

	// S3/CloudFront (StorageType "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string

	// SMTP
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string // also the site name shown in pages and emails

	// EmailAdmin receives a notice for every referral. Blank disables it.
	EmailAdmin string

	// APICORSOrigins may call /api/referencias and /api/vacantes from a
	// browser. Empty means same-origin only.
	APICORSOrigins []string

	// BaseURL is used for absolute links in emails.
	BaseURL string

	// Store call deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutUpload time.Duration

	// Admin seeding
	SeedAdminEmail    string
	SeedAdminName     string
	SeedAdminPassword string
}
