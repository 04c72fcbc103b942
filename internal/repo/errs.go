package repo

import (
	"github.com/tgwatch/tgwatch/internal/errs"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func mongoIsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func mongoIsNoDocuments(err error) bool {
	return err == mongo.ErrNoDocuments
}

// IsConflict reports whether err is the Conflict kind, used by callers
// that want to treat duplicates as a benign no-op rather than a failure.
func IsConflict(err error) bool {
	return errs.Is(err, errs.Conflict)
}
