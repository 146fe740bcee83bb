package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// ImageOption tunes PNG capture.
type ImageOption func(*imageOptions)

type imageOptions struct {
	Height        int64
	Width         int64
	SleepDuration time.Duration
}

const (
	defaultImageHeight int64 = 1080
	defaultImageWidth  int64 = 1920
	defaultImageWait         = time.Second
)

// WithImageSize sets the viewport of the screenshot. Non-positive values
// keep the defaults.
func WithImageSize(width, height int64) ImageOption {
	return func(o *imageOptions) {
		if width > 0 {
			o.Width = width
		}
		if height > 0 {
			o.Height = height
		}
	}
}

// WithImageWait sets how long to let the headless browser settle before the
// capture, so chart animations and scripts finish.
func WithImageWait(wait time.Duration) ImageOption {
	return func(o *imageOptions) {
		if wait > 0 {
			o.SleepDuration = wait
		}
	}
}

func imageOptionsWithDefaults(opts []ImageOption) imageOptions {
	o := imageOptions{
		Height:        defaultImageHeight,
		Width:         defaultImageWidth,
		SleepDuration: defaultImageWait,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// ImageRenderer screenshots rendered chart HTML into a PNG using a headless
// Chrome instance.
type ImageRenderer struct {
	imageOptions
}

// NewImageRenderer builds a PNG renderer.
func NewImageRenderer(opts ...ImageOption) *ImageRenderer {
	return &ImageRenderer{
		imageOptions: imageOptionsWithDefaults(opts),
	}
}

// Render captures the HTML from source and writes the PNG to dest.
func (r *ImageRenderer) Render(dest io.Writer, source io.Reader) error {
	screenshot, err := r.screenshot(source)
	if err != nil {
		return fmt.Errorf("taking screenshot: %w", err)
	}

	if _, err = dest.Write(screenshot); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	return nil
}

func (r *ImageRenderer) screenshot(reader io.Reader) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	const qualityPNG = 100 // 100 forces PNG output

	var screenshot []byte
	err = chromedp.Run(ctx,
		chromedp.Emulate(device.Info{
			Height:    r.Height,
			Width:     r.Width,
			Landscape: true,
		}),
		chromedp.Navigate("data:text/html,"+string(content)),
		chromedp.Sleep(r.SleepDuration), // let the chart settle before capturing
		chromedp.FullScreenshot(&screenshot, qualityPNG),
	)
	if err != nil {
		return nil, err
	}

	return screenshot, nil
}
