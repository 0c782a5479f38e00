package models

import (
	"fmt"

	"github.com/dmitrijs2005/parentlink/internal/common"
)

func errEmpty(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrEmptyDraft, msg)
}
