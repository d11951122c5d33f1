package provider

import (
	"regexp"
	"strings"
)

type Category int

const (
	Unrecognized Category = iota
	YouTube
	VkVideoClip
	VkStory
	Rutube
	TikTok
)

var categoryNames = map[Category]string{
	Unrecognized: "Unrecognized",
	YouTube:      "YouTube",
	VkVideoClip:  "VK",
	VkStory:      "VKStory",
	Rutube:       "Rutube",
	TikTok:       "TikTok",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[Unrecognized]
}

// markers are checked in order; the first substring hit decides the category.
var markers = []struct {
	substr   string
	category Category
}{
	{"youtube.com", YouTube},
	{"youtu.be", YouTube},
	{"vk.com/video", VkVideoClip},
	{"vk.com/clip", VkVideoClip},
	{"vk.com/story", VkStory},
	{"rutube.ru", Rutube},
	{"vt.tiktok.com", TikTok},
	{"tiktok.com", TikTok},
}

// Classify maps a URL to the pipeline that can fetch it. It never fails:
// anything without a known marker is Unrecognized.
func Classify(url string) Category {
	for _, m := range markers {
		if strings.Contains(url, m.substr) {
			return m.category
		}
	}
	return Unrecognized
}

var urlRegex = regexp.MustCompile(`https?://[^\s,]+`)

// ExtractURL returns the first http(s) link in text, or "".
func ExtractURL(text string) string {
	return urlRegex.FindString(text)
}
