package blogservice

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloglist/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(strings.TrimSpace(title) != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 500), "title", "must not be more than 500 characters long")
}

func validateURL(v *common.Validator, url string) {
	v.Check(v.CheckStringLength(url, 0, 2048), "url", "must not be more than 2048 characters long")
}

// canonicalID lowercases uuids so that textual variants of the same id compare equal.
// Anything that is not a uuid is returned unchanged.
func canonicalID(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return parsed.String()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
