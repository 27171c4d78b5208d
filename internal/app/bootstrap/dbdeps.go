// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratarefer/internal/app/system/mailer"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends built in ConnectDB and handed to the later
// lifecycle hooks. Shutdown closes them.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds uploaded résumés.
	FileStorage storage.Store

	// Mailer sends referral notifications. It is always set; Enabled reports
	// whether SMTP is configured.
	Mailer *mailer.Mailer
}
