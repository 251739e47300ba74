package config

// SiteProfile holds site-specific settings for a single host.
// The listing widget's pagination parameter, the junk-page shape, the
// report categories, and the consent cookie are all site-specific magic
// with no general rule, so they live in configuration rather than code.
type SiteProfile struct {
	// ListingURL is the full paginated-listing URL for this site,
	// including the fixed date-range query parameters.
	ListingURL string `yaml:"listingUrl,omitempty"`

	// FeedURL is the site's RSS feed.
	FeedURL string `yaml:"feedUrl,omitempty"`

	// SitemapURL is the site's sitemap.
	SitemapURL string `yaml:"sitemapUrl,omitempty"`

	// Cookie is an HTTP cookie to send when fetching this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// JunkPagePattern overrides the junk page regular expression.
	JunkPagePattern string `yaml:"junkPagePattern,omitempty"`

	// ReportPathPrefix overrides the report link path prefix.
	ReportPathPrefix string `yaml:"reportPathPrefix,omitempty"`

	// PageParamTemplate overrides the pagination parameter template.
	PageParamTemplate string `yaml:"pageParamTemplate,omitempty"`

	// ValidityMarker overrides the listing validity heading phrase.
	ValidityMarker string `yaml:"validityMarker,omitempty"`

	// Categories overrides the report category allow-list.
	Categories []string `yaml:"categories,omitempty"`

	// DateMarkerClass overrides the listing date element class.
	DateMarkerClass string `yaml:"dateMarkerClass,omitempty"`

	// DescriptionClass overrides the report description container class.
	DescriptionClass string `yaml:"descriptionClass,omitempty"`

	// ArticleClass overrides the report article body class.
	ArticleClass string `yaml:"articleClass,omitempty"`

	// CookieBannerText overrides the consent overlay marker text.
	CookieBannerText string `yaml:"cookieBannerText,omitempty"`
}

// File represents the structure of the .pubcrawl configuration file.
type File struct {
	// Sites maps hosts to their site-specific profiles.
	// Keys should be the bare host (e.g., "www.example.se").
	Sites map[string]SiteProfile `yaml:"sites,omitempty"`

	// Defaults contains the default profile applied to all sites unless
	// overridden in the site-specific profile.
	Defaults SiteProfile `yaml:"defaults,omitempty"`
}

// GetSiteProfile returns the profile for a specific host.
// It merges the site-specific profile with defaults.
func (cf *File) GetSiteProfile(host string) SiteProfile {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific profile if present
	if profile, ok := cf.Sites[host]; ok {
		if profile.ListingURL != "" {
			result.ListingURL = profile.ListingURL
		}
		if profile.FeedURL != "" {
			result.FeedURL = profile.FeedURL
		}
		if profile.SitemapURL != "" {
			result.SitemapURL = profile.SitemapURL
		}
		if profile.Cookie != "" {
			result.Cookie = profile.Cookie
		}
		if len(profile.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range profile.Headers {
				result.Headers[k] = v
			}
		}
		if profile.Depth != 0 {
			result.Depth = profile.Depth
		}
		if profile.JunkPagePattern != "" {
			result.JunkPagePattern = profile.JunkPagePattern
		}
		if profile.ReportPathPrefix != "" {
			result.ReportPathPrefix = profile.ReportPathPrefix
		}
		if profile.PageParamTemplate != "" {
			result.PageParamTemplate = profile.PageParamTemplate
		}
		if profile.ValidityMarker != "" {
			result.ValidityMarker = profile.ValidityMarker
		}
		if len(profile.Categories) > 0 {
			result.Categories = profile.Categories
		}
		if profile.DateMarkerClass != "" {
			result.DateMarkerClass = profile.DateMarkerClass
		}
		if profile.DescriptionClass != "" {
			result.DescriptionClass = profile.DescriptionClass
		}
		if profile.ArticleClass != "" {
			result.ArticleClass = profile.ArticleClass
		}
		if profile.CookieBannerText != "" {
			result.CookieBannerText = profile.CookieBannerText
		}
	}

	return result
}
