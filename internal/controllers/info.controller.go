package controllers

import (
	"context"
	"net/http"

	"hostsnap/internal/models"

	"github.com/gin-gonic/gin"
)

// SnapshotCollector produces one telemetry snapshot per call
type SnapshotCollector interface {
	Collect(ctx context.Context) (*models.Snapshot, error)
}

type InfoController struct {
	collector SnapshotCollector
}

func NewInfoController(collector SnapshotCollector) *InfoController {
	return &InfoController{collector: collector}
}

func (ic *InfoController) GetInfo(c *gin.Context) {
	snapshot, err := ic.collector.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
