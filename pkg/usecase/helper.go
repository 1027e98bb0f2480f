package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

func wrapComplaintGet(err error, id int64) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
	}
	return goerr.Wrap(err, "failed to get complaint", goerr.V(ComplaintIDKey, id))
}
