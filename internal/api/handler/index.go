package handler

import (
	"net/http"
)

const banner = `farlinker

Replace farcaster.xyz with farlinker.xyz in a cast link to get a rich
preview in Messages, WhatsApp, Telegram and other apps. Visitors are sent
straight on to the original cast.
`

// Index handles GET /
func Index(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, banner)
}
