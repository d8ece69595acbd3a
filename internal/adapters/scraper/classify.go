package scraper

import (
	"regexp"
	"strings"

	"forum-harvester/internal/domain"
)

// Classification tables are evaluated top to bottom; the first matching row wins.

type fileTypeRule struct {
	fileType   domain.FileType
	extensions []string
}

var fileTypeRules = []fileTypeRule{
	{domain.FileImage, []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}},
	{domain.FileVideo, []string{".mp4", ".webm", ".mov", ".avi"}},
	{domain.FileDocument, []string{".pdf", ".doc", ".docx", ".txt"}},
}

// classifyFileType infers an attachment type from its filename.
func classifyFileType(filename string) domain.FileType {
	lower := strings.ToLower(filename)
	for _, rule := range fileTypeRules {
		for _, ext := range rule.extensions {
			if strings.Contains(lower, ext) {
				return rule.fileType
			}
		}
	}
	return domain.FileUnknown
}

type mediaRule struct {
	mediaType domain.MediaType
	hosts     []string
	id        *regexp.Regexp
}

var mediaRules = []mediaRule{
	{domain.MediaSaintVideo, []string{"saint2.cr", "saint.to"}, regexp.MustCompile(`/embed/([^/?]+)`)},
	{domain.MediaYouTube, []string{"youtube.com", "youtu.be"}, regexp.MustCompile(`(?:embed/|v=)([^&?]+)`)},
	{domain.MediaRedgifs, []string{"redgifs.com"}, regexp.MustCompile(`/(?:watch|ifr)/([^/?]+)`)},
	{domain.MediaImgur, []string{"imgur.com"}, nil},
}

// classifyMedia tags an embed source URL and extracts the platform's media id.
// Unknown sources are generic iframes without id.
func classifyMedia(src string) (domain.MediaType, string) {
	for _, rule := range mediaRules {
		for _, host := range rule.hosts {
			if !strings.Contains(src, host) {
				continue
			}
			id := ""
			if rule.id != nil {
				if m := rule.id.FindStringSubmatch(src); m != nil {
					id = m[1]
				}
			}
			return rule.mediaType, id
		}
	}
	return domain.MediaIframe, ""
}
