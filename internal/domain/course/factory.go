package course

import "time"

func NewFromCreateRequest(req CreateCourseRequest, ownerID int64) Course {
	now := time.Now().UTC()

	return Course{
		Title:           req.Title,
		Description:     req.Description,
		EstimatedTime:   req.EstimatedTime,
		MaterialsNeeded: req.MaterialsNeeded,
		OwnerID:         ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply copies an update onto c. OwnerID is never touched.
func (c *Course) Apply(req UpdateCourseRequest) {
	c.Title = req.Title
	c.Description = req.Description

	if req.EstimatedTime != nil {
		c.EstimatedTime = req.EstimatedTime
	}
	if req.MaterialsNeeded != nil {
		c.MaterialsNeeded = req.MaterialsNeeded
	}

	c.UpdatedAt = time.Now().UTC()
}
