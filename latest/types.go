package latest

// Update is the latest content snapshot published on a channel.
// All fields except TS are optional; absent fields stay nil and are
// omitted from any rendering. Updates are read-only once fetched.
type Update struct {
	// Text is the update body. Whitespace and newlines are significant.
	Text *string `json:"text,omitempty"`

	// Image is the URL of an optional image.
	Image *string `json:"image,omitempty"`

	// Href is the URL the update links to.
	Href *string `json:"href,omitempty"`

	// BGColor is a CSS background color for the update card.
	BGColor *string `json:"bgColor,omitempty"`

	// TextColor is a CSS text color for the update card.
	TextColor *string `json:"textColor,omitempty"`

	// TS is the publish time in microseconds since the Unix epoch.
	TS int64 `json:"ts"`
}

// Channel describes the channel an update was fetched from.
// The remote API may send additional fields; only the title is kept.
type Channel struct {
	Title string `json:"title"`
}

// Result is the parsed response of a latest-update fetch. Either field
// may be nil when the remote side has nothing for the channel; callers
// must treat that as "no update available", not as an error.
type Result struct {
	Update  *Update  `json:"update"`
	Channel *Channel `json:"channel"`
}
