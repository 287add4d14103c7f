package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/message"
)

// report is everything mojodump knows about a buffer. The cbor tags define
// the machine-readable output.
type report struct {
	Size      int           `cbor:"size"`
	Raw       bool          `cbor:"raw"`
	Header    *headerRecord `cbor:"header,omitempty"`
	HeaderErr string        `cbor:"header_error,omitempty"`
	Payload   *chunkRecord  `cbor:"payload,omitempty"`
	Chunks    []chunkRecord `cbor:"chunks"`
	ScanErr   string        `cbor:"scan_error,omitempty"`
	Words     []wordRecord  `cbor:"words"`
}

type headerRecord struct {
	Version   uint32 `cbor:"version"`
	Name      uint32 `cbor:"name"`
	Flags     uint32 `cbor:"flags"`
	RequestID uint64 `cbor:"request_id,omitempty"`
}

type chunkRecord struct {
	Offset   uint64 `cbor:"offset"`
	Size     uint32 `cbor:"size"`
	Metadata uint32 `cbor:"metadata"`
	Label    string `cbor:"label"`
}

type wordRecord struct {
	Offset uint64 `cbor:"offset"`
	Bytes  []byte `cbor:"bytes"`
	Chunk  int    `cbor:"chunk"`
	Header bool   `cbor:"header,omitempty"`
	Target uint64 `cbor:"target,omitempty"`
	Note   string `cbor:"note,omitempty"`
}

func buildReport(data []byte, raw bool) *report {
	rep := &report{Size: len(data), Raw: raw}

	if !raw {
		h, err := message.PeekHeader(data)
		if err != nil {
			rep.HeaderErr = err.Error()
		} else {
			rep.Header = &headerRecord{Version: h.Version, Name: h.Name, Flags: h.Flags, RequestID: h.RequestID}
		}
	}

	chunks, err := bindings.Scan(data)
	if err != nil {
		rep.ScanErr = err.Error()
	}
	payload := 0
	if !raw {
		payload = 1
	}
	for i, c := range chunks {
		rec := chunkRecord{Offset: c.Offset, Size: c.Size, Metadata: c.Metadata, Label: fmt.Sprintf("chunk %d", i)}
		switch {
		case !raw && i == 0:
			rec.Label = "message header"
		case i == payload:
			rec.Label = "payload"
		}
		rep.Chunks = append(rep.Chunks, rec)
	}
	if payload < len(rep.Chunks) {
		p := rep.Chunks[payload]
		rep.Payload = &p
	}

	for _, w := range bindings.Words(data, chunks) {
		end := min(w.Offset+8, uint64(len(data)))
		rec := wordRecord{
			Offset: w.Offset,
			Bytes:  data[w.Offset:end],
			Chunk:  w.Chunk,
			Header: w.Header,
			Target: w.Target,
		}
		rec.Note = rep.note(w)
		rep.Words = append(rep.Words, rec)
	}
	return rep
}

func (r *report) note(w bindings.Word) string {
	if w.Chunk < 0 {
		return "trailing bytes"
	}
	c := r.Chunks[w.Chunk]
	if w.Header {
		return fmt.Sprintf("%s: size=%d meta=%d", c.Label, c.Size, c.Metadata)
	}
	if !r.Raw && w.Chunk == 0 && r.Header != nil {
		switch w.Offset {
		case 8:
			return fmt.Sprintf("name=%d flags=%s", r.Header.Name, flagString(r.Header.Flags))
		case 16:
			return fmt.Sprintf("request_id=%d", r.Header.RequestID)
		}
	}
	if w.Target != 0 {
		return fmt.Sprintf("ptr -> %#x (%s)", w.Target, r.labelAt(w.Target))
	}
	return ""
}

func (r *report) labelAt(offset uint64) string {
	for _, c := range r.Chunks {
		if c.Offset == offset {
			return c.Label
		}
	}
	return "?"
}

func flagString(flags uint32) string {
	if flags == message.FlagNone {
		return "none"
	}
	var parts []string
	if flags&message.FlagExpectsResponse != 0 {
		parts = append(parts, "expects_response")
	}
	if flags&message.FlagIsResponse != 0 {
		parts = append(parts, "is_response")
	}
	if flags&message.FlagIsSync != 0 {
		parts = append(parts, "sync")
	}
	if rest := flags &^ (message.FlagExpectsResponse | message.FlagIsResponse | message.FlagIsSync); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", rest))
	}
	return strings.Join(parts, "|")
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	offset  lipgloss.Style
	header  lipgloss.Style
	pointer lipgloss.Style
	err     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		offset:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		pointer: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

// renderLines renders the text dump. chunkLines holds the line of each
// chunk's header word.
func renderLines(r *report, st styles) (lines []string, chunkLines []int) {
	lines = append(lines, st.title.Render("mojodump")+fmt.Sprintf(" %d bytes, %d chunks", r.Size, len(r.Chunks)))

	switch {
	case r.Header != nil:
		h := r.Header
		line := fmt.Sprintf("v%d name=%d flags=%s", h.Version, h.Name, flagString(h.Flags))
		if h.Version >= 1 {
			line += fmt.Sprintf(" request_id=%d", h.RequestID)
		}
		lines = append(lines, st.label.Render("header")+" "+line)
	case r.HeaderErr != "":
		lines = append(lines, st.label.Render("header")+" "+st.err.Render(r.HeaderErr))
	}
	if r.Payload != nil {
		lines = append(lines, st.label.Render("payload")+" "+
			fmt.Sprintf("offset=%#x size=%d version=%d", r.Payload.Offset, r.Payload.Size, r.Payload.Metadata))
	}
	if r.ScanErr != "" {
		lines = append(lines, st.label.Render("scan")+" "+st.err.Render(r.ScanErr))
	}
	lines = append(lines, "")

	for _, w := range r.Words {
		hexBytes := fmt.Sprintf("% x", w.Bytes)
		line := st.offset.Render(fmt.Sprintf("%04x", w.Offset)) + "  " + fmt.Sprintf("%-23s", hexBytes)
		switch {
		case w.Header:
			chunkLines = append(chunkLines, len(lines))
			line += "  " + st.header.Render(w.Note)
		case w.Target != 0:
			line += "  " + st.pointer.Render(w.Note)
		case w.Note != "":
			line += "  " + w.Note
		}
		lines = append(lines, line)
	}
	return lines, chunkLines
}

func renderText(r *report, st styles) string {
	lines, _ := renderLines(r, st)
	return strings.Join(lines, "\n") + "\n"
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("mojodump: CBOR encoder initialization failed: " + err.Error())
	}
}

func encodeCBOR(r *report) ([]byte, error) {
	return encMode.Marshal(r)
}
