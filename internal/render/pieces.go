package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Glyph bodies on a 45x45 canvas; fill and stroke are applied per color.
var glyphBodies = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="14" r="5"/>
<polygon points="16,33 29,33 26,20 19,20"/>`,
	nchess.Rook: `<rect x="12" y="9" width="21" height="7"/>
<polygon points="14,33 31,33 29,16 16,16"/>`,
	nchess.Knight: `<path d="M14 33 L31 33 L29 21 L33 17 L27 9 L18 9 L11 17 L15 20 L20 17 L15 26 Z"/>`,
	nchess.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>
<ellipse cx="22.5" cy="19" rx="7" ry="9"/>
<polygon points="15,33 30,33 27,27 18,27"/>`,
	nchess.Queen: `<polygon points="12,33 33,33 36,12 29,24 22.5,9 16,24 9,12"/>
<circle cx="9" cy="11" r="2"/>
<circle cx="22.5" cy="8" r="2"/>
<circle cx="36" cy="11" r="2"/>`,
	nchess.King: `<rect x="21" y="5" width="3" height="12"/>
<rect x="17" y="8" width="11" height="3"/>
<polygon points="13,33 32,33 30,19 15,19"/>`,
}

const glyphBase = `<rect x="10" y="34" width="25" height="5"/>`

func pieceSVG(piece nchess.Piece) ([]byte, error) {
	body, ok := glyphBodies[piece.Type()]
	if !ok {
		return nil, fmt.Errorf("no glyph for piece %v", piece)
	}
	fill, stroke := "#f8f8f4", "#1e1e1e"
	if piece.Color() == nchess.Black {
		fill, stroke = "#2a2a2a", "#0a0a0a"
	}
	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&buf, `<g fill="%s" stroke="%s" stroke-width="1.5">%s%s</g></svg>`, fill, stroke, body, glyphBase)
	return buf.Bytes(), nil
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
