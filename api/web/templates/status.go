// Package templates renders the frame's local status pages
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/aouyang1/magicframe/api/models"
	"github.com/aouyang1/magicframe/store"
)

const pageStyle = `body{font-family:sans-serif;background:#111;color:#eee;margin:2em}
table{border-collapse:collapse}td{padding:.2em 1em .2em 0}
.photo-row{display:flex;flex-wrap:wrap;gap:.5em}
.photo-item{width:160px;font-size:.8em}
.photo-thumbnail{width:160px;height:120px;object-fit:cover;background:#000}`

// StatusPage is the landing page: what the frame is doing, its settings and the photos it holds
func StatusPage(status models.StatusResponse, settings *store.AppSettings, photos []store.Photo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Magic Photo Frame</title>")
		sb.WriteString("<style>" + pageStyle + "</style></head><body>")
		sb.WriteString("<h1>Magic Photo Frame</h1>")

		account := "not logged in"
		if status.LoggedIn {
			account = "logged in as " + status.Username
		}
		mode := "offline"
		if status.Online {
			mode = "online"
		}

		sb.WriteString("<h2>Status</h2><table>")
		row(&sb, "Account", account)
		row(&sb, "Mode", mode)
		row(&sb, "Screen", status.View)
		if status.Message != "" {
			row(&sb, "Message", status.Message)
		}
		row(&sb, "Slideshow running", yesNo(status.Running))
		row(&sb, "Images", fmt.Sprint(status.ImageCount))
		row(&sb, "Showing", status.CurrentImage)
		row(&sb, "Last check for new images", status.LastPoll)
		if status.LastPollErr != "" {
			row(&sb, "Last check error", status.LastPollErr)
		}
		sb.WriteString("</table>")

		if settings != nil {
			sb.WriteString("<h2>Settings</h2><table>")
			row(&sb, "Seconds per image", fmt.Sprint(settings.SlideshowDelaySeconds))
			row(&sb, "Seconds between checks", fmt.Sprint(settings.PollIntervalSeconds))
			row(&sb, "Shuffle", yesNo(settings.ShuffleEnabled))
			sb.WriteString("</table>")
		}

		sb.WriteString(fmt.Sprintf("<h2>Photos (%d)</h2>", len(photos)))
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
		if err := PhotoGrid(photos).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// PhotoGrid is the thumbnail list of the photos in the registry
func PhotoGrid(photos []store.Photo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<div class=\"photo-row\">\n")
		for _, photo := range photos {
			name := templ.EscapeString(photo.PhotoName)
			sb.WriteString("  <div class=\"photo-item\">\n")
			sb.WriteString(fmt.Sprintf("    <img src=\"%s\" alt=\"%s\" class=\"photo-thumbnail\" loading=\"lazy\" />\n",
				templ.EscapeString(photoImageURL(photo)), name))
			sb.WriteString(fmt.Sprintf("    <div>%s</div><div>%s · %s</div>\n",
				name, templ.EscapeString(string(photo.Origin)), templ.EscapeString(addedAt(photo))))
			sb.WriteString("  </div>\n")
		}
		sb.WriteString("</div>")
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString("<tr><td>" + templ.EscapeString(label) + "</td><td>" + templ.EscapeString(value) + "</td></tr>")
}
