package repository

import (
	stderrors "errors"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/pkg/errors"
)

// storeError maps a DocumentStore error onto the application taxonomy.
func storeError(resource string, err error) error {
	switch {
	case stderrors.Is(err, docstore.ErrNotFound):
		return errors.NotFound(resource, err)
	case stderrors.Is(err, docstore.ErrAlreadyExists):
		return errors.Conflict(resource + " already exists")
	}
	return errors.Internal("Failed to access "+resource, err)
}

func patientsFrom(docs []docstore.Document) []*entity.Patient {
	out := make([]*entity.Patient, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.PatientFromDocument(doc))
	}
	return out
}

func appointmentsFrom(docs []docstore.Document) []*entity.Appointment {
	out := make([]*entity.Appointment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.AppointmentFromDocument(doc))
	}
	return out
}

func dietPlansFrom(docs []docstore.Document) []*entity.DietPlan {
	out := make([]*entity.DietPlan, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.DietPlanFromDocument(doc))
	}
	return out
}

func recordsFrom(docs []docstore.Document) []*entity.FinancialRecord {
	out := make([]*entity.FinancialRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.FinancialRecordFromDocument(doc))
	}
	return out
}

func chatsFrom(docs []docstore.Document) []*entity.Chat {
	out := make([]*entity.Chat, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.ChatFromDocument(doc))
	}
	return out
}

func messagesFrom(chatID string, docs []docstore.Document) []*entity.Message {
	out := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		out = append(out, entity.MessageFromDocument(chatID, doc))
	}
	return out
}
