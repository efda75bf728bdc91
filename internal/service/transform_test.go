package service

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

func TestTransformsTolerateBrokenBlobs(t *testing.T) {
	broken := types.JSONText("{not json")

	profile := toInstructorProfile(models.InstructorProfileDocument{ID: "p-1", ProfileData: broken})
	assert.Equal(t, "", profile.Bio)
	assert.Equal(t, []string{}, profile.Specialization)
	assert.Equal(t, []string{}, profile.CurrentAssignments)

	session := toClassSession(models.ClassSessionDocument{ID: "s-1", TimeSlot: "09:00-10:00", ActualTimes: nil, SessionData: broken})
	assert.Equal(t, "09:00", session.StartTime)
	assert.Equal(t, "10:00", session.EndTime)
	assert.Nil(t, session.ActualStartTime)
	assert.Equal(t, []string{}, session.Materials)

	online := toOnlineSession(models.OnlineSessionDocument{ID: "o-1", Attendees: types.JSONText(`{"wrong":"shape"}`), Content: broken})
	assert.Equal(t, []models.Attendee{}, online.Attendees)
	assert.Equal(t, []models.ChatMessage{}, online.Chat)

	schedule := toInstructorSchedule(models.InstructorScheduleDocument{ID: "sc-1", TimeSlots: types.JSONText("")})
	assert.NotNil(t, schedule.TimeSlots)
	assert.Len(t, schedule.TimeSlots, 0)

	rating := toStudentRating(models.StudentRatingDocument{ID: "r-1", Ratings: broken, Feedback: types.JSONText("null")})
	assert.Equal(t, 0, rating.Ratings.Overall)
	assert.Equal(t, "", rating.Comments)
}

func TestToInstructorProfileReadsProfileData(t *testing.T) {
	doc := models.InstructorProfileDocument{
		ID:          "p-1",
		ProfileData: types.JSONText(`{"bio":"Teaches IELTS","specialization":["ielts","toefl"],"experience":7,"location":"Jakarta"}`),
	}
	profile := toInstructorProfile(doc)
	assert.Equal(t, "Teaches IELTS", profile.Bio)
	assert.Equal(t, []string{"ielts", "toefl"}, profile.Specialization)
	assert.Equal(t, 7, profile.Experience)
	assert.Equal(t, "Jakarta", profile.Location)
	assert.Equal(t, []string{}, profile.Qualifications)
}
