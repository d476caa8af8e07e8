package feed

// Source is a configured RSS/Atom endpoint identified by name and URL.
type Source struct {
	Name string
	URL  string
}

// DefaultSources is the curated list shown to users who have not configured
// their own feeds.
var DefaultSources = []Source{
	{Name: "IT之家 (科技)", URL: "https://www.ithome.com/rss/"},
	{Name: "36Kr (商业)", URL: "https://36kr.com/feed"},
	{Name: "少数派 (生活)", URL: "https://sspai.com/feed"},
	{Name: "Solidot (极客)", URL: "http://solidot.org/index.rss"},
	{Name: "The Verge (科技评论)", URL: "https://www.theverge.com/rss/index.xml"},
	{Name: "Wired (深度前瞻)", URL: "https://www.wired.com/feed/rss"},
	{Name: "TechCrunch (创投风向)", URL: "https://techcrunch.com/feed/"},
	{Name: "Teslarati (马斯克/SpaceX)", URL: "https://www.teslarati.com/feed/"},
	{Name: "Ars Technica (深度科技)", URL: "https://feeds.arstechnica.com/arstechnica/index"},
	{Name: "MIT Tech Review (AI前沿)", URL: "https://www.technologyreview.com/feed/"},
	{Name: "Tom's Hardware (英伟达/硬件)", URL: "https://www.tomshardware.com/feeds/all"},
}
