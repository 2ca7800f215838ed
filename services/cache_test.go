package services

import (
	"testing"
	"time"

	"college-portal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFlushKeepsPreviews(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute, time.Hour)
	c.Set("collection:calendar", []models.CalendarEvent{}, 0)
	c.SetPreview(&models.ImportPreview{ID: "abc", Target: models.TargetCalendar})

	c.Flush()

	_, found := c.Get("collection:calendar")
	assert.False(t, found)

	preview, found := c.GetPreview("abc")
	require.True(t, found)
	assert.Equal(t, models.TargetCalendar, preview.Target)
}

func TestCachePreviewLifecycle(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute, 30*time.Minute)
	assert.Equal(t, 30*time.Minute, c.PreviewTTL())

	_, found := c.GetPreview("missing")
	assert.False(t, found)

	c.SetPreview(&models.ImportPreview{ID: "p1"})
	_, found = c.GetPreview("p1")
	assert.True(t, found)

	c.DeletePreview("p1")
	_, found = c.GetPreview("p1")
	assert.False(t, found)
}

func TestCachePreviewExpires(t *testing.T) {
	c := NewCacheService(time.Minute, time.Minute, 20*time.Millisecond)
	c.SetPreview(&models.ImportPreview{ID: "short"})

	assert.Eventually(t, func() bool {
		_, found := c.GetPreview("short")
		return !found
	}, time.Second, 10*time.Millisecond)
}
