// Package render draws a board position as a PNG: squares, piece glyphs, coordinates,
// the selected piece with its legal destinations and a small HUD above the board.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNilBoard = errors.New("board is nil")

type MoveHighlight struct {
	From nchess.Square
	To   nchess.Square
}

type Options struct {
	LastMove   *MoveHighlight
	Selected   *nchess.Square
	Highlights []nchess.Square
	HUDHeader  string
	HUDTurn    string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error)
}

const (
	SquareSize   = 64
	boardSquares = 8
	boardSize    = SquareSize * boardSquares
	SideMargin   = 32
	TopMargin    = 84
	bottomMargin = 32

	panelHeight   = 30
	gapToBoard    = 16
	panelRadius   = 10
	panelPaddingX = 16
	shadowOffsetY = 4
)

// Size is the pixel size of every rendered image.
func Size() (w, h int) {
	return boardSize + SideMargin*2, boardSize + TopMargin + bottomMargin
}

type svgBoardRenderer struct {
	face font.Face
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{face: basicfont.Face7x13}
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, ErrNilBoard
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := Size()
	origin := image.Point{X: SideMargin, Y: TopMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawBoardShadow(img, boardRect)
	drawSquares(img, origin)
	drawLastMove(img, board, opts.LastMove, origin)
	if opts.Selected != nil {
		drawSquareOverlay(img, *opts.Selected, origin, selectedColor)
	}
	if err := drawPieces(img, board, origin); err != nil {
		return nil, err
	}
	drawDestinations(img, board, opts.Highlights, origin)
	drawCoordinates(img, r.face, origin)
	drawHUD(img, r.face, opts, Material(board), boardRect)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor         = color.RGBA{24, 26, 38, 255}
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	selectedColor           = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	destinationColor        = color.NRGBA{R: 40, G: 40, B: 40, A: 110}
	captureColor            = color.NRGBA{R: 214, G: 64, B: 64, A: 130}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 90}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor           = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor       = color.NRGBA{R: 40, G: 44, B: 64, A: 245}
	hudShadowColor          = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary          = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor        = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	boardShadowColor        = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

var (
	ranks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	files = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(boardRect.Min.X+4, boardRect.Min.Y+6, boardRect.Max.X+8, boardRect.Max.Y+10)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row, rank := range ranks {
		for col, file := range files {
			x := origin.X + col*SquareSize
			y := origin.Y + row*SquareSize
			clr := squareColor(nchess.NewSquare(file, rank))
			imagedraw.Draw(dst, image.Rect(x, y, x+SquareSize, y+SquareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, origin image.Point) error {
	boardMap := board.SquareMap()
	for sq, piece := range boardMap {
		if piece == nchess.NoPiece {
			continue
		}
		img, err := renderPieceImage(piece, SquareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(sq, origin), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawLastMove tints both squares of a White move and draws an arrow for a Black one.
func drawLastMove(img *image.RGBA, board *nchess.Board, mv *MoveHighlight, origin image.Point) {
	if mv == nil {
		return
	}
	piece := board.Piece(mv.To)
	if piece != nchess.NoPiece && piece.Color() == nchess.Black {
		drawArrow(img, mv.From, mv.To, origin, blackMoveHighlightArrow)
		return
	}
	drawSquareOverlay(img, mv.From, origin, whiteMoveHighlightFill)
	drawSquareOverlay(img, mv.To, origin, whiteMoveHighlightFill)
}

// drawDestinations marks empty targets with a dot and captures with a ring.
func drawDestinations(img *image.RGBA, board *nchess.Board, targets []nchess.Square, origin image.Point) {
	for _, sq := range targets {
		rect := squareRect(sq, origin)
		center := image.Pt(rect.Min.X+SquareSize/2, rect.Min.Y+SquareSize/2)
		if board.Piece(sq) != nchess.NoPiece {
			drawRing(img, center, SquareSize/2-2, 5, captureColor)
			continue
		}
		drawDisc(img, center, SquareSize/7, destinationColor)
	}
}

func drawSquareOverlay(img *image.RGBA, sq nchess.Square, origin image.Point, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawCoordinates(dst imagedraw.Image, face font.Face, origin image.Point) {
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + len(ranks)*SquareSize

	for row, rank := range ranks {
		baseline := origin.Y + row*SquareSize + SquareSize/2 + ascent/2
		drawCenteredText(drawer, rank.String(), origin.X-SideMargin/2, baseline)
	}
	for col, file := range files {
		center := origin.X + col*SquareSize + SquareSize/2
		drawCenteredText(drawer, file.String(), center, boardEndY+ascent+4)
	}
}

func drawHUD(img *image.RGBA, face font.Face, opts Options, material MaterialScore, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Chess"
	}
	turnText := strings.TrimSpace(opts.HUDTurn)
	scoreText := formatMaterialDiff(material)

	bottom := boardRect.Min.Y - gapToBoard
	top := bottom - panelHeight

	scoreWidth := drawer.MeasureString(scoreText).Round() + panelPaddingX*2
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, top, boardRect.Max.X, bottom)

	titleWidth := drawer.MeasureString(title).Round() + panelPaddingX*2
	if maxW := boardRect.Dx()/2 - 8; titleWidth > maxW {
		titleWidth = maxW
	}
	titleRect := image.Rect(boardRect.Min.X, top, boardRect.Min.X+titleWidth, bottom)
	title = truncateWithEllipsis(face, title, titleRect.Dx()-panelPaddingX*2)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)

	drawRoundedPanel(img, scoreRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)

	if turnText == "" {
		return
	}
	free := scoreRect.Min.X - titleRect.Max.X - 16
	turnWidth := drawer.MeasureString(turnText).Round() + panelPaddingX*2
	if turnWidth > free {
		turnWidth = free
	}
	if turnWidth <= panelPaddingX*2 {
		return
	}
	left := titleRect.Max.X + (free-turnWidth)/2 + 8
	turnRect := image.Rect(left, top, left+turnWidth, bottom)
	turnText = truncateWithEllipsis(face, turnText, turnRect.Dx()-panelPaddingX*2)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq nchess.Square, origin image.Point) image.Rectangle {
	row := 7 - int(sq.Rank())
	col := int(sq.File())
	x := origin.X + col*SquareSize
	y := origin.Y + row*SquareSize
	return image.Rect(x, y, x+SquareSize, y+SquareSize)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
