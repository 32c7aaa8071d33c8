package document

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"songdeck/internal/cards"
	"songdeck/internal/fileutil"
)

// FaceFileName returns "NNN-kind.png", zero padded to at least three digits
// or to the width of total.
func FaceFileName(index, total int, kind cards.Kind) string {
	width := max(3, len(strconv.Itoa(total)))
	return fmt.Sprintf("%0*d-%s.png", width, index, kind)
}

// WriteFaces exports every non-empty face as a PNG in dir and returns the
// number of files written.
func WriteFaces(ctx context.Context, dir string, pairs []cards.Pair, workers int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create faces directory: %w", err)
	}
	total := 0
	for _, pair := range pairs {
		total = max(total, pair.CardIndex)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	written := 0
	for _, pair := range pairs {
		for _, face := range []cards.Face{pair.Code, pair.Solution} {
			if face.Empty() {
				continue
			}
			written++
			path := filepath.Join(dir, FaceFileName(face.CardIndex, total, face.Kind))
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				return writePNG(path, face)
			})
		}
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}
	return written, nil
}

func writePNG(path string, face cards.Face) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return png.Encode(w, face.Image)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
