package service

import (
	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
)

func toInstructorProfile(doc models.InstructorProfileDocument) models.InstructorProfile {
	data := blob.Decode[models.ProfileData](doc.ProfileData)
	assignments := []string(doc.CurrentAssignments)
	if assignments == nil {
		assignments = []string{}
	}
	return models.InstructorProfile{
		ID:                 doc.ID,
		UserID:             doc.UserID,
		Name:               doc.Name,
		Email:              doc.Email,
		Phone:              doc.Phone,
		Status:             doc.Status,
		MaxClasses:         doc.MaxClasses,
		CurrentAssignments: assignments,
		Rating:             doc.Rating,
		TotalRatings:       doc.TotalRatings,
		ProfileImage:       blob.Value(data.ProfileImage),
		Bio:                blob.Value(data.Bio),
		Specialization:     stringList(data.Specialization),
		Experience:         blob.Value(data.Experience),
		Qualifications:     stringList(data.Qualifications),
		Location:           blob.Value(data.Location),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func toClassAssignment(doc models.ClassAssignmentDocument) models.ClassAssignment {
	details := blob.Decode[models.ClassDetails](doc.ClassDetails)
	return models.ClassAssignment{
		ID:           doc.ID,
		InstructorID: doc.InstructorID,
		ClassID:      doc.ClassID,
		SchoolID:     doc.SchoolID,
		StartDate:    doc.StartDate,
		EndDate:      doc.EndDate,
		IsTemporary:  doc.IsTemporary,
		Status:       doc.Status,
		AssignedBy:   doc.AssignedBy,
		ClassName:    blob.Value(details.ClassName),
		Subject:      blob.Value(details.Subject),
		Grade:        blob.Value(details.Grade),
		Schedule:     blob.Value(details.Schedule),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func toClassSession(doc models.ClassSessionDocument) models.ClassSession {
	times := blob.Decode[models.ActualTimes](doc.ActualTimes)
	data := blob.Decode[models.SessionData](doc.SessionData)
	start, end := models.SplitTimeSlot(doc.TimeSlot)
	return models.ClassSession{
		ID:                 doc.ID,
		ClassID:            doc.ClassID,
		InstructorID:       doc.InstructorID,
		SchoolID:           doc.SchoolID,
		Title:              doc.Title,
		Date:               doc.Date,
		StartTime:          start,
		EndTime:            end,
		SessionType:        doc.SessionType,
		Status:             doc.Status,
		ActualStartTime:    times.ActualStartTime,
		ActualEndTime:      times.ActualEndTime,
		Materials:          stringList(data.Materials),
		Homework:           blob.Value(data.Homework),
		Notes:              blob.Value(data.Notes),
		CancellationReason: blob.Value(data.CancellationReason),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func toStudentRating(doc models.StudentRatingDocument) models.StudentRating {
	feedback := blob.Decode[models.RatingFeedback](doc.Feedback)
	return models.StudentRating{
		ID:           doc.ID,
		StudentID:    doc.StudentID,
		SessionID:    doc.SessionID,
		InstructorID: doc.InstructorID,
		ClassID:      doc.ClassID,
		Ratings:      blob.Decode[models.RatingScores](doc.Ratings),
		Strengths:    blob.Value(feedback.Strengths),
		Improvements: blob.Value(feedback.Improvements),
		Comments:     blob.Value(feedback.Comments),
		ParentNote:   blob.Value(feedback.ParentNote),
		IsVisible:    doc.IsVisible,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func toOnlineSession(doc models.OnlineSessionDocument) models.OnlineSession {
	recording := blob.Decode[models.RecordingInfo](doc.Recording)
	content := blob.Decode[models.SessionContent](doc.Content)
	chat := []models.ChatMessage{}
	if content.Chat != nil {
		chat = *content.Chat
	}
	return models.OnlineSession{
		ID:                doc.ID,
		SessionID:         doc.SessionID,
		InstructorID:      doc.InstructorID,
		Platform:          doc.Platform,
		MeetingURL:        doc.MeetingURL,
		MeetingID:         doc.MeetingID,
		Status:            doc.Status,
		Attendees:         blob.DecodeList[models.Attendee](doc.Attendees),
		RecordingURL:      blob.Value(recording.URL),
		RecordingDuration: blob.Value(recording.DurationSeconds),
		RecordingReady:    blob.Value(recording.Available),
		Chat:              chat,
		Whiteboard:        blob.Value(content.Whiteboard),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

func toInstructorSchedule(doc models.InstructorScheduleDocument) models.InstructorSchedule {
	return models.InstructorSchedule{
		ID:           doc.ID,
		InstructorID: doc.InstructorID,
		Date:         doc.Date,
		TimeSlots:    blob.DecodeList[models.TimeSlot](doc.TimeSlots),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func stringList(p *[]string) []string {
	if p == nil || *p == nil {
		return []string{}
	}
	return *p
}
