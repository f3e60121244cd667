package booth

import (
	"fmt"

	"github.com/cjeanneret/BoothGo/internal/logic/screen"
	"github.com/cjeanneret/BoothGo/internal/photo"
)

// PhotoRef points at one session photo for the preview strip and downloads.
type PhotoRef struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Snapshot is the state the kiosk page renders.
type Snapshot struct {
	Screen       string     `json:"screen"`
	Capture      string     `json:"capture"`
	Countdown    int        `json:"countdown"`
	PhotoCount   int        `json:"photo_count"`
	TargetCount  int        `json:"target_count"`
	Filter       string     `json:"filter"`
	FilterEffect string     `json:"filter_effect"`
	Frame        string     `json:"frame"`
	Mirror       bool       `json:"mirror"`
	Flash        bool       `json:"flash"`
	LiveFeed     bool       `json:"live_feed"`
	CanRetake    bool       `json:"can_retake"`
	Committed    bool       `json:"committed"`
	Notice       string     `json:"notice,omitempty"`
	Photos       []PhotoRef `json:"photos"`
	QR           string     `json:"qr,omitempty"`
	GallerySize  int        `json:"gallery_size"`
}

// qrPlaceholder stands in for a real QR code on the preview screen.
const qrPlaceholder = "QR code coming soon"

// Snapshot captures the current state.
func (b *Booth) Snapshot() Snapshot {
	cfg := b.session.Config()
	s := Snapshot{
		Screen:       b.screens.Current().String(),
		Capture:      b.seq.State().String(),
		Countdown:    b.seq.Remaining(),
		PhotoCount:   b.session.Count(),
		TargetCount:  b.session.Target(),
		Filter:       string(cfg.Filter),
		FilterEffect: cfg.Filter.Effect(),
		Frame:        cfg.FrameID,
		Mirror:       cfg.Mirror,
		Flash:        b.flashing,
		LiveFeed:     b.live,
		CanRetake:    b.canRetake(),
		Committed:    b.committed,
		Notice:       b.notice,
		Photos:       refs(b.session.Count()),
		GallerySize:  b.gallery.Len(),
	}
	if b.screens.Current() == screen.Preview {
		s.QR = qrPlaceholder
	}
	return s
}

func refs(n int) []PhotoRef {
	out := make([]PhotoRef, n)
	for i := range out {
		out[i] = PhotoRef{
			Index:    i + 1,
			Filename: photo.Filename(i + 1),
			URL:      fmt.Sprintf("/api/session/photos/%d", i+1),
		}
	}
	return out
}
