package provider

import (
	"net/url"
	"strings"
)

// Site is one entry in the static download catalog: which partner host an
// item URL belongs to and what a download from it costs.
type Site struct {
	ID   string
	Host string
	Cost int64
}

// Evaluated in order; first match wins.
var siteTable = []Site{
	{ID: "freepik", Host: "freepik.com", Cost: 10},
	{ID: "flaticon", Host: "flaticon.com", Cost: 10},
	{ID: "vecteezy", Host: "vecteezy.com", Cost: 10},
	{ID: "pngtree", Host: "pngtree.com", Cost: 10},
	{ID: "envato", Host: "elements.envato.com", Cost: 20},
	{ID: "motionarray", Host: "motionarray.com", Cost: 20},
	{ID: "storyblocks", Host: "storyblocks.com", Cost: 20},
	{ID: "creativefabrica", Host: "creativefabrica.com", Cost: 20},
	{ID: "shutterstock", Host: "shutterstock.com", Cost: 30},
	{ID: "depositphotos", Host: "depositphotos.com", Cost: 30},
	{ID: "dreamstime", Host: "dreamstime.com", Cost: 30},
	{ID: "123rf", Host: "123rf.com", Cost: 30},
	{ID: "adobestock", Host: "stock.adobe.com", Cost: 40},
	{ID: "istock", Host: "istockphoto.com", Cost: 40},
	{ID: "gettyimages", Host: "gettyimages.com", Cost: 50},
	{ID: "alamy", Host: "alamy.com", Cost: 50},
}

// LookupSite resolves an item URL against the catalog by hostname suffix.
func LookupSite(itemURL string) (Site, bool) {
	u, err := url.Parse(itemURL)
	if err != nil {
		return Site{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Site{}, false
	}
	for _, site := range siteTable {
		if host == site.Host || strings.HasSuffix(host, "."+site.Host) {
			return site, true
		}
	}
	return Site{}, false
}
