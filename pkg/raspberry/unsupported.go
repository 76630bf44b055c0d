//go:build !linux

package raspberry

func openGpiod(string, int64) (Chip, error) {
	return nil, ErrUnsupported
}

func openGpiomem(int64) (Chip, error) {
	return nil, ErrUnsupported
}
