//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// closeKeys end the session from the preview window itself.
var closeKeys = []ebiten.Key{ebiten.KeyEscape}

func pollKeys(dst []Event) []Event {
	for _, key := range closeKeys {
		if inpututil.IsKeyJustPressed(key) {
			return append(dst, Event{Kind: EventCloseRequested})
		}
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		dst = append(dst, Event{Kind: EventCloseRequested})
	}
	return dst
}
