// Package service holds the console's use cases: the session store and the
// resource synchronizers that keep local views in line with the backend.
//
// Synchronizers never patch local state from a write response. After a
// successful write they refetch the collection and return it.
package service

import (
	"strconv"

	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/validation"
)

// validate runs local validation and counts rejections per resource.
func validate(metrics *observability.Metrics, resource string, v any) error {
	if err := validation.Struct(v); err != nil {
		metrics.IncrValidationFailure(resource)
		return err
	}
	return nil
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
