package chunker

// Window is one planned segment of a source recording, in seconds.
type Window struct {
	Index    int
	Start    float64
	Duration float64
}

// Plan returns the windows covering [0, duration) with chunks of length
// seconds that overlap by overlap seconds. Windows start at 0, length-overlap,
// 2*(length-overlap) and so on while the start is before duration; the last
// window may be shorter. Invalid constants and non-positive durations yield no
// windows.
func Plan(duration float64, length, overlap int) []Window {
	if duration <= 0 || length <= 0 || overlap < 0 || overlap >= length {
		return nil
	}
	step := float64(length - overlap)
	var windows []Window
	for i := 0; ; i++ {
		start := float64(i) * step
		if start >= duration {
			break
		}
		windows = append(windows, Window{
			Index:    i,
			Start:    start,
			Duration: min(float64(length), duration-start),
		})
	}
	return windows
}
