package docstore

import "time"

const (
	UsersCollection        = "users"
	AppointmentsCollection = "appointments"
	ChatsCollection        = "chats"

	patientsCollection  = "patients"
	dietPlansCollection = "dietPlans"
	financialCollection = "financial"
	messagesCollection  = "messages"
)

// Every accessor below reports ok=false when the identity is empty. Callers
// must treat that as a no-op and never fall back to an unscoped read.

func UserPath(uid string) (string, bool) {
	if uid == "" {
		return "", false
	}
	return UsersCollection + "/" + uid, true
}

func PatientsPath(uid string) (string, bool) {
	return userSub(uid, patientsCollection)
}

func DietPlansPath(uid string) (string, bool) {
	return userSub(uid, dietPlansCollection)
}

func FinancialPath(uid string) (string, bool) {
	return userSub(uid, financialCollection)
}

func userSub(uid, collection string) (string, bool) {
	user, ok := UserPath(uid)
	if !ok {
		return "", false
	}
	return user + "/" + collection, true
}

// DocPath joins a collection path and a document ID. An empty ID yields
// ok=false.
func DocPath(collection, id string) (string, bool) {
	if collection == "" || id == "" {
		return "", false
	}
	return collection + "/" + id, true
}

func Patients(uid string) (Query, bool) {
	path, ok := PatientsPath(uid)
	if !ok {
		return Query{}, false
	}
	return Query{Collection: path}, true
}

func DietPlans(uid string) (Query, bool) {
	path, ok := DietPlansPath(uid)
	if !ok {
		return Query{}, false
	}
	return Query{Collection: path}, true
}

func Financial(uid string) (Query, bool) {
	path, ok := FinancialPath(uid)
	if !ok {
		return Query{}, false
	}
	return Query{Collection: path}, true
}

// Appointments share one top-level collection and are scoped by owner field.
func Appointments(uid string) (Query, bool) {
	if uid == "" {
		return Query{}, false
	}
	return Query{Collection: AppointmentsCollection}.Where("nutritionistId", OpEqual, uid), true
}

// Chats returns the chats uid takes part in, most recently active first.
func Chats(uid string) (Query, bool) {
	if uid == "" {
		return Query{}, false
	}
	return Query{Collection: ChatsCollection}.
		Where("participants", OpArrayContains, uid).
		OrderBy("updatedAt", true), true
}

func ChatPath(chatID string) (string, bool) {
	return DocPath(ChatsCollection, chatID)
}

func MessagesPath(chatID string) (string, bool) {
	chat, ok := ChatPath(chatID)
	if !ok {
		return "", false
	}
	return chat + "/" + messagesCollection, true
}

// Messages returns a chat's messages in send order.
func Messages(chatID string) (Query, bool) {
	path, ok := MessagesPath(chatID)
	if !ok {
		return Query{}, false
	}
	return Query{Collection: path}.OrderBy("timestamp", false), true
}

// FinancialBetween selects records dated in [from, to), newest first.
func FinancialBetween(uid string, from, to time.Time) (Query, bool) {
	q, ok := Financial(uid)
	if !ok {
		return Query{}, false
	}
	return q.Where("date", OpGreaterEqual, from).
		Where("date", OpLess, to).
		OrderBy("date", true), true
}
