package block

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/ltst/latest-block/latest"
)

// View identifies which of the three mutually exclusive views is active
type View int

const (
	// ViewInput shows the channel identifier form
	ViewInput View = iota
	// ViewLoading shows the loading indicator while a fetch is outstanding
	ViewLoading
	// ViewLoaded shows the loaded update card
	ViewLoaded
)

func (v View) String() string {
	switch v {
	case ViewInput:
		return "input"
	case ViewLoading:
		return "loading"
	case ViewLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Default card colors applied when the update does not carry its own
const (
	defaultBGColor   = "#ffffff"
	defaultTextColor = "#000000"
)

// State is an immutable snapshot of the block for rendering
type State struct {
	View      View
	ChannelID string
	Channel   *latest.Channel
	Update    *latest.Update
}

// State returns a consistent snapshot of the block's current state.
// Exactly one view is active: loading wins while a fetch is outstanding,
// loaded requires both channel and update, anything else is the input form.
func (b *Block) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	view := ViewInput
	switch {
	case b.loading:
		view = ViewLoading
	case b.channel != nil && b.update != nil:
		view = ViewLoaded
	}

	return State{
		View:      view,
		ChannelID: b.channelID,
		Channel:   b.channel,
		Update:    b.update,
	}
}

const blockTemplate = `<div class="latest-block">
{{- if .Loading}}
  <div class="latest-block__loading">Loading&hellip;</div>
{{- else if .Loaded}}
  <div class="latest-block__header">
    <h2 class="latest-block__title">{{.Channel.Title}}</h2>
    <a class="latest-block__reset" href="/block/reset" data-action="reset">switch channel</a>
  </div>
  <div class="latest-block__card" style="background-color: {{.BGColor}}; color: {{.TextColor}}">
    {{- if .Update.Image}}
    <img class="latest-block__image" src="{{.Update.Image}}" alt="">
    {{- end}}
    {{- if .Update.Text}}
    <p class="latest-block__text">{{.Update.Text}}</p>
    {{- end}}
    {{- if .Update.Href}}
    <a class="latest-block__link" href="{{.Update.Href}}">{{.Update.Href}}</a>
    {{- end}}
  </div>
  <div class="latest-block__footer">
    <span class="latest-block__timestamp">{{.Timestamp}}</span>
    <a class="latest-block__site" href="{{.ChannelURL}}">View on ltst.xyz</a>
  </div>
{{- else}}
  <form class="latest-block__form" method="post" action="/block/submit" data-action="submit">
    <input type="text" name="channelId" value="{{.ChannelID}}" placeholder="Channel ID" aria-label="Channel ID">
    <button type="submit">Load</button>
  </form>
{{- end}}
</div>
`

var blockTmpl = template.Must(template.New("block").Parse(blockTemplate))

// templateData is the flattened view model handed to the template
type templateData struct {
	Loading    bool
	Loaded     bool
	ChannelID  string
	Channel    *latest.Channel
	Update     *latest.Update
	BGColor    string
	TextColor  string
	Timestamp  string
	ChannelURL string
}

// Render writes the HTML for the current state
func (b *Block) Render(w io.Writer) error {
	return renderState(w, b.State(), b.siteURL)
}

// RenderHTML renders the current state to a string
func (b *Block) RenderHTML() (string, error) {
	_, html, err := b.SnapshotHTML()
	return html, err
}

// SnapshotHTML returns one consistent state snapshot together with its
// rendered HTML.
func (b *Block) SnapshotHTML() (State, string, error) {
	state := b.State()
	var sb strings.Builder
	if err := renderState(&sb, state, b.siteURL); err != nil {
		return state, "", err
	}
	return state, sb.String(), nil
}

// renderState renders a state snapshot. It applies the documented color
// defaults and timestamp formatting; update fields are otherwise passed
// through untouched.
func renderState(w io.Writer, state State, siteURL string) error {
	data := templateData{
		Loading:   state.View == ViewLoading,
		Loaded:    state.View == ViewLoaded,
		ChannelID: state.ChannelID,
		Channel:   state.Channel,
		Update:    state.Update,
		BGColor:   defaultBGColor,
		TextColor: defaultTextColor,
	}

	if state.Update != nil {
		if state.Update.BGColor != nil {
			data.BGColor = *state.Update.BGColor
		}
		if state.Update.TextColor != nil {
			data.TextColor = *state.Update.TextColor
		}
		data.Timestamp = FormatTimestamp(state.Update.TS)
	}
	if data.Loaded {
		data.ChannelURL = fmt.Sprintf("%s/c/%s", strings.TrimSuffix(siteURL, "/"), state.ChannelID)
	}

	return blockTmpl.Execute(w, data)
}

// FormatTimestamp converts microseconds since the Unix epoch into a
// human-readable UTC date.
func FormatTimestamp(micros int64) string {
	return time.UnixMicro(micros).UTC().Format("Jan 2, 2006 15:04")
}
