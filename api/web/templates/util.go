package templates

import (
	"fmt"
	"net/url"
	"time"

	"github.com/aouyang1/magicframe/store"
)

func photoImageURL(photo store.Photo) string {
	return fmt.Sprintf("/photos/%s/image", url.PathEscape(photo.PhotoName))
}

func addedAt(photo store.Photo) string {
	if photo.AddedAt.IsZero() {
		return ""
	}
	return photo.AddedAt.Local().Format(time.DateTime)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
