// Package sitemap harvests documents listed in the site's XML sitemap.
//
// The harvester accepts both a plain urlset and a sitemap index; index
// children are fetched one level deep. Only PDF and XLSX locations are
// kept. For each document the publication date is taken from the file
// itself when possible (the PDF Info dictionary or the workbook core
// properties) and falls back to the sitemap lastmod, with the chosen
// source recorded alongside the date.
package sitemap
