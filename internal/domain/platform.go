package domain

import (
	"fmt"
	"strings"
)

// Platform identifies a social network and acts as the unique key for a draft
// record within a generation batch.
type Platform string

const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformTwitter   Platform = "Twitter"
	PlatformInstagram Platform = "Instagram"
	PlatformX         Platform = "X"
	PlatformReddit    Platform = "Reddit"
	PlatformFacebook  Platform = "Facebook"
	PlatformTikTok    Platform = "TikTok"
)

// TargetPlatforms is the fixed set of platforms a generation request asks for,
// in presentation order.
var TargetPlatforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformX,
	PlatformTikTok,
	PlatformReddit,
}

var platformsByName = func() map[string]Platform {
	m := make(map[string]Platform, len(TargetPlatforms))
	for _, p := range TargetPlatforms {
		m[strings.ToLower(string(p))] = p
	}
	return m
}()

// ParsePlatform normalizes a backend-supplied platform name to the closed
// enumeration. Unrecognized names are an error, never silently coerced.
func ParsePlatform(s string) (Platform, error) {
	p, ok := platformsByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}
