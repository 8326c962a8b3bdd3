package service

import "errors"

var (
	// ErrProductNotFound means the catalog has no product with that id.
	ErrProductNotFound = errors.New("product not found")

	// ErrNoImages means the product has no image with a usable URL, so
	// there is nothing to publish.
	ErrNoImages = errors.New("product has no publishable images")

	// ErrNotLinked means Instagram was requested but the Facebook page
	// has no linked Instagram business account.
	ErrNotLinked = errors.New("no instagram business account linked to the page")

	// ErrMediaNotReady means the media container never reached FINISHED
	// within the polling budget. Worth a manual retry.
	ErrMediaNotReady = errors.New("media container not ready")
)
