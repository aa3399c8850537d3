package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Tuple identifies one analysis run's logical coordinates
type Tuple struct {
	CollegeName string `bson:"collegeName" json:"collegeName" validate:"required,notblank,max=200"`
	Program     string `bson:"program" json:"program" validate:"required,notblank,max=100"`
	Batch       string `bson:"batch" json:"batch" validate:"required,notblank,max=50"`
	Semester    string `bson:"semester" json:"semester" validate:"required,notblank,max=50"`
	Session     string `bson:"session" json:"session" validate:"required,notblank,max=50"`
}

// FileRecord groups the generated report URLs of one tuple
type FileRecord struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Tuple      `bson:",inline"`
	ResultPath []string  `bson:"result_path" json:"result_path"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
