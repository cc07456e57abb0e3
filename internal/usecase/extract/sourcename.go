package extract

import (
	"net/url"
	"strings"
)

// knownSources maps domain substrings to display names for outlets whose
// domains don't read well when title-cased mechanically.
var knownSources = []struct {
	substr string
	name   string
}{
	{"bbc", "BBC News"},
	{"reuters", "Reuters"},
	{"cnn", "CNN"},
	{"aljazeera", "Al Jazeera"},
	{"wikipedia", "Wikipedia"},
	{"cbsnews", "CBS News"},
	{"npr", "NPR"},
	{"nypost", "New York Post"},
	{"apnews", "Associated Press"},
	{"alarabiya", "Al Arabiya"},
	{"indiatvnews", "India TV News"},
	{"thenationalnews", "The National News"},
	{"nytimes", "The New York Times"},
	{"theguardian", "The Guardian"},
	{"washingtonpost", "The Washington Post"},
	{"timesofindia", "The Times of India"},
	{"hindustantimes", "Hindustan Times"},
	{"ndtv", "NDTV"},
}

// sourceNameFromURL derives a readable source name from an article URL.
// Unknown domains fall back to the www-stripped first label, title-cased.
func sourceNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())

	for _, s := range knownSources {
		if strings.Contains(host, s.substr) {
			return s.name
		}
	}

	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
