package chesspresenter

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-Board/internal/render"
	"github.com/park285/Cheese-Board/internal/session"
	"github.com/park285/Cheese-Board/pkg/chessdto"
)

// Sink receives formatted output. Either func may be nil.
type Sink struct {
	SendMessage func(ctx context.Context, message string) error
	SendImage   func(ctx context.Context, imageBase64 string) error
}

// Presenter turns session states into DTOs with a rendered board image and delivers
// them without coupling the session to any transport.
type Presenter struct {
	renderer  render.BoardRenderer
	formatter *Formatter
	sink      Sink
}

func NewPresenter(renderer render.BoardRenderer, formatter *Formatter, sink Sink) *Presenter {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return &Presenter{renderer: renderer, formatter: formatter, sink: sink}
}

// Snapshot renders st into a DTO carrying the PNG.
func (p *Presenter) Snapshot(ctx context.Context, st session.State, remaining int) (*chessdto.SessionState, error) {
	dto := ToDTOState(st, remaining, nil)
	if p == nil || p.renderer == nil {
		return dto, nil
	}
	img, err := p.renderer.RenderPNG(ctx, st.Board.ChessBoard(), p.renderOptions(st, dto))
	if err != nil {
		return dto, fmt.Errorf("render board: %w", err)
	}
	dto.BoardImage = img
	return dto, nil
}

// Present renders st and sends the event line, if any, followed by the image.
func (p *Presenter) Present(ctx context.Context, ev session.Event, st session.State, remaining int) (*chessdto.SessionState, error) {
	dto, err := p.Snapshot(ctx, st, remaining)
	if err != nil {
		return dto, err
	}
	if p == nil {
		return dto, nil
	}

	if text := strings.TrimSpace(p.formatter.Event(ev, dto)); text != "" && p.sink.SendMessage != nil {
		if err := p.sink.SendMessage(ctx, text); err != nil {
			return dto, err
		}
	}
	if len(dto.BoardImage) > 0 && p.sink.SendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(dto.BoardImage)
		if err := p.sink.SendImage(ctx, encoded); err != nil {
			return dto, err
		}
	}
	return dto, nil
}

func (p *Presenter) renderOptions(st session.State, dto *chessdto.SessionState) render.Options {
	opts := render.Options{
		HUDHeader: p.formatter.Header(dto),
		HUDTurn:   p.formatter.Turn(dto),
	}
	if st.Selected != nil {
		sel := st.Selected.ChessSquare()
		opts.Selected = &sel
	}
	if len(st.Highlights) > 0 {
		opts.Highlights = make([]nchess.Square, 0, len(st.Highlights))
		for _, sq := range st.Highlights {
			opts.Highlights = append(opts.Highlights, sq.ChessSquare())
		}
	}
	if st.LastMove != nil {
		opts.LastMove = &render.MoveHighlight{From: st.LastMove.From.ChessSquare(), To: st.LastMove.To.ChessSquare()}
	}
	return opts
}
