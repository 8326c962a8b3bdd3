package service

import "github.com/dejanvasic/shopgram/internal/models"

// The Graph API rejects posts with more than 10 attachments.
const maxPostImages = 10

// OrderImages selects the images submitted to a post. The input is
// expected in upload order (the repository returns it that way). Images
// without a URL are dropped, the main image moves to the front, everyone
// else keeps their relative order, and the result is capped at 10.
func OrderImages(images []*models.ProductImage) []*models.ProductImage {
	usable := make([]*models.ProductImage, 0, len(images))
	for _, img := range images {
		if img != nil && img.FileURL != "" {
			usable = append(usable, img)
		}
	}

	mainIdx := -1
	for i, img := range usable {
		if img.IsMain {
			mainIdx = i
			break
		}
	}

	ordered := make([]*models.ProductImage, 0, len(usable))
	if mainIdx >= 0 {
		ordered = append(ordered, usable[mainIdx])
		ordered = append(ordered, usable[:mainIdx]...)
		ordered = append(ordered, usable[mainIdx+1:]...)
	} else {
		ordered = append(ordered, usable...)
	}

	if len(ordered) > maxPostImages {
		ordered = ordered[:maxPostImages]
	}
	return ordered
}
