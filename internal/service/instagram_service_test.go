package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dejanvasic/shopgram/internal/graph"
	"github.com/dejanvasic/shopgram/internal/models"
)

// newTestInstagram skips real sleeps and counts them.
func newTestInstagram(fg *fakeGraph, sleeps *int) *instagramService {
	return &instagramService{
		client: fg.client(),
		sleep: func(time.Duration) {
			if sleeps != nil {
				*sleeps++
			}
		},
	}
}

func TestInstagramSingleImageSkipsCarousel(t *testing.T) {
	fg := newFakeGraph(t)
	ig := newTestInstagram(fg, nil)

	product := &models.Product{Name: "Lamp", OpisFbInsta: "Buy now"}
	images := []*models.ProductImage{img(1, "u1", true)}

	mediaID, err := ig.PublishProduct(context.Background(), testAccess(), product, images, PublishOptions{})
	if err != nil {
		t.Fatalf("PublishProduct: %v", err)
	}

	containers := fg.callsTo("/v21.0/ig1/media")
	if len(containers) != 1 {
		t.Fatalf("expected exactly 1 container call, got %d", len(containers))
	}
	form := containers[0].Form
	if form["image_url"] != "u1" {
		t.Errorf("image_url = %q", form["image_url"])
	}
	if form["caption"] != "Buy now" {
		t.Errorf("single image must carry the caption, got %q", form["caption"])
	}
	if _, ok := form["is_carousel_item"]; ok {
		t.Errorf("single image must not be tagged as a carousel item")
	}

	publishes := fg.callsTo("/v21.0/ig1/media_publish")
	if len(publishes) != 1 {
		t.Fatalf("expected 1 media_publish call, got %d", len(publishes))
	}
	if publishes[0].Form["creation_id"] != "id-1" {
		t.Errorf("creation_id = %q, want the single container id", publishes[0].Form["creation_id"])
	}
	if mediaID == "" {
		t.Errorf("expected a media id")
	}
}

func TestInstagramCarousel(t *testing.T) {
	fg := newFakeGraph(t)
	ig := newTestInstagram(fg, nil)

	product := &models.Product{Name: "Lamp", Opis: "Two views"}
	images := []*models.ProductImage{
		img(1, "u1", false),
		img(2, "u2", false),
	}

	_, err := ig.PublishProduct(context.Background(), testAccess(), product, images, PublishOptions{})
	if err != nil {
		t.Fatalf("PublishProduct: %v", err)
	}

	containers := fg.callsTo("/v21.0/ig1/media")
	if len(containers) != 3 {
		t.Fatalf("expected 2 children + 1 carousel container, got %d", len(containers))
	}

	for i, child := range containers[:2] {
		if child.Form["is_carousel_item"] != "true" {
			t.Errorf("child %d missing is_carousel_item", i)
		}
		if _, ok := child.Form["caption"]; ok {
			t.Errorf("child %d must not carry the caption", i)
		}
	}
	if containers[0].Form["image_url"] != "u1" || containers[1].Form["image_url"] != "u2" {
		t.Errorf("children out of upload order: %q, %q", containers[0].Form["image_url"], containers[1].Form["image_url"])
	}

	carousel := containers[2].Form
	if carousel["media_type"] != "CAROUSEL" {
		t.Errorf("media_type = %q", carousel["media_type"])
	}
	if carousel["children"] != "id-1,id-2" {
		t.Errorf("children = %q, want id-1,id-2", carousel["children"])
	}
	if carousel["caption"] != "Two views" {
		t.Errorf("carousel caption = %q", carousel["caption"])
	}

	publishes := fg.callsTo("/v21.0/ig1/media_publish")
	if len(publishes) != 1 || publishes[0].Form["creation_id"] != "id-3" {
		t.Fatalf("media_publish must use the carousel container id, got %+v", publishes)
	}
}

func TestInstagramScheduledPublishTime(t *testing.T) {
	fg := newFakeGraph(t)
	ig := newTestInstagram(fg, nil)

	images := []*models.ProductImage{img(1, "u1", false)}
	_, err := ig.PublishProduct(context.Background(), testAccess(), &models.Product{Name: "Lamp"}, images, PublishOptions{ScheduledAt: 1900000000})
	if err != nil {
		t.Fatalf("PublishProduct: %v", err)
	}

	publish := fg.callsTo("/v21.0/ig1/media_publish")[0]
	if publish.Form["publish_time"] != "1900000000" {
		t.Errorf("publish_time = %q", publish.Form["publish_time"])
	}
}

func TestInstagramNotLinked(t *testing.T) {
	fg := newFakeGraph(t)
	ig := newTestInstagram(fg, nil)

	access := &graph.PageAccess{PageID: "page1", PageAccessToken: "page-token"}
	images := []*models.ProductImage{img(1, "u1", false)}

	_, err := ig.PublishProduct(context.Background(), access, &models.Product{Name: "Lamp"}, images, PublishOptions{})
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
	if len(fg.calls) != 0 {
		t.Errorf("no network calls expected, got %d", len(fg.calls))
	}
}

func TestInstagramNoImages(t *testing.T) {
	fg := newFakeGraph(t)
	ig := newTestInstagram(fg, nil)

	_, err := ig.PublishProduct(context.Background(), testAccess(), &models.Product{Name: "Lamp"}, nil, PublishOptions{})
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func pollCalls(fg *fakeGraph, creationID string) int {
	n := 0
	for _, call := range fg.calls {
		if call.Path == "/v21.0/"+creationID && call.Form["fields"] == "status_code,status" {
			n++
		}
	}
	return n
}

func TestWaitForContainerEventuallyFinishes(t *testing.T) {
	fg := newFakeGraph(t)
	fg.statuses = []string{"IN_PROGRESS", "IN_PROGRESS", "FINISHED"}
	var sleeps int
	ig := newTestInstagram(fg, &sleeps)

	if err := ig.waitForContainer(context.Background(), "page-token", "cont-1"); err != nil {
		t.Fatalf("waitForContainer: %v", err)
	}
	if got := pollCalls(fg, "cont-1"); got != 3 {
		t.Errorf("expected exactly 3 status polls, got %d", got)
	}
}

func TestWaitForContainerExhausts(t *testing.T) {
	fg := newFakeGraph(t)
	fg.statuses = []string{
		"IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS",
		"IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS", "IN_PROGRESS",
	}
	var sleeps int
	ig := newTestInstagram(fg, &sleeps)

	err := ig.waitForContainer(context.Background(), "page-token", "cont-1")
	if !errors.Is(err, ErrMediaNotReady) {
		t.Fatalf("expected ErrMediaNotReady, got %v", err)
	}
	if got := pollCalls(fg, "cont-1"); got != 10 {
		t.Errorf("expected exactly 10 status polls, got %d", got)
	}
}

func TestWaitForContainerErrorFailsFast(t *testing.T) {
	fg := newFakeGraph(t)
	fg.statuses = []string{"ERROR"}
	ig := newTestInstagram(fg, nil)

	err := ig.waitForContainer(context.Background(), "page-token", "cont-1")
	if err == nil || !strings.Contains(err.Error(), "media container failed") {
		t.Fatalf("expected terminal container error, got %v", err)
	}
	if got := pollCalls(fg, "cont-1"); got != 1 {
		t.Errorf("ERROR must fail after 1 poll, got %d", got)
	}
}
