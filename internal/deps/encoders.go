package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// EncoderLister returns the output of `ffmpeg -hide_banner -encoders`.
type EncoderLister func(ctx context.Context, ffmpeg string) (string, error)

// CheckEncoder reports whether ffmpeg was built with the named audio encoder.
// Chunk extraction writes MP3 through libmp3lame, which some minimal ffmpeg
// builds omit.
func CheckEncoder(ctx context.Context, ffmpeg, encoder string, list EncoderLister) Status {
	result := Status{
		Name:        "ffmpeg " + encoder,
		Command:     strings.TrimSpace(ffmpeg),
		Description: "Required to write transcription chunks",
	}
	if result.Command == "" {
		result.Detail = "command not configured"
		return result
	}
	if list == nil {
		list = listEncoders
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	output, err := list(checkCtx, result.Command)
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == encoder {
			result.Available = true
			return result
		}
	}
	result.Detail = fmt.Sprintf("encoder %q not available in this ffmpeg build", encoder)
	return result
}

func listEncoders(ctx context.Context, ffmpeg string) (string, error) {
	out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-encoders").Output() //nolint:gosec
	if err != nil {
		return "", err
	}
	return string(out), nil
}
