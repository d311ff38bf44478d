// internal/app/policy/requestpolicy/requestpolicy.go
package requestpolicy

import (
	"context"

	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registry is the slice of the chapter store that approval checks consult.
type Registry interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsAtLocation(ctx context.Context, locationID primitive.ObjectID) (bool, error)
}

// CheckApproval validates a chapter request against the live registry.
// Checks run in a fixed order (name, slug, location) and the first conflict
// wins. A clear request yields status.OK.
func CheckApproval(ctx context.Context, reg Registry, req models.ChapterRequest) (status.Flag, error) {
	if taken, err := reg.ExistsByName(ctx, req.Name); err != nil {
		return "", err
	} else if taken {
		return status.NameAlreadyExists, nil
	}
	if taken, err := reg.ExistsBySlug(ctx, req.Slug); err != nil {
		return "", err
	} else if taken {
		return status.SlugAlreadyExists, nil
	}
	if taken, err := reg.ExistsAtLocation(ctx, req.LocationID); err != nil {
		return "", err
	} else if taken {
		return status.LocationAlreadyExists, nil
	}
	return status.OK, nil
}
