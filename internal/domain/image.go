package domain

import "fmt"

// AspectRatio is one of the fixed set of ratio strings a draft may suggest and
// an image request may carry. The two can diverge: the suggestion is a default,
// the request value is the user's choice.
type AspectRatio string

const (
	RatioSquare    AspectRatio = "1:1"
	RatioLandscape AspectRatio = "16:9"
	RatioPortrait  AspectRatio = "9:16"
)

var aspectRatios = map[AspectRatio]struct{}{
	"1:1": {}, "2:3": {}, "3:2": {}, "3:4": {}, "4:3": {},
	"4:5": {}, "5:4": {}, "9:16": {}, "16:9": {}, "21:9": {},
}

func ParseAspectRatio(s string) (AspectRatio, error) {
	r := AspectRatio(s)
	if _, ok := aspectRatios[r]; !ok {
		return "", fmt.Errorf("unknown aspect ratio %q", s)
	}
	return r, nil
}

// ImageSize is a resolution tier, orthogonal to aspect ratio. Backends without
// resolution tiers accept it and ignore it.
type ImageSize string

const (
	Size1K ImageSize = "1K"
	Size2K ImageSize = "2K"
	Size4K ImageSize = "4K"
)

var imageSizes = map[ImageSize]struct{}{Size1K: {}, Size2K: {}, Size4K: {}}

func ParseImageSize(s string) (ImageSize, error) {
	sz := ImageSize(s)
	if _, ok := imageSizes[sz]; !ok {
		return "", fmt.Errorf("unknown image size %q", s)
	}
	return sz, nil
}
