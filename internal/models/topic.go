package models

import "time"

// Subject is the certification at the root of the topic hierarchy.
type Subject struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	QuizCount   *int      `json:"quiz_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SubjectListResponse struct {
	Subjects []Subject `json:"subjects"`
	Total    int       `json:"total"`
}

type MainTopic struct {
	ID          int64     `json:"id"`
	SubjectID   int64     `json:"subject_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type MainTopicListResponse struct {
	MainTopics []MainTopic `json:"main_topics"`
	Total      int         `json:"total"`
}

// SubTopic is a leaf of the hierarchy and the unit of question generation.
// CoreContent is the accumulated source text questions are generated from;
// UpdatedAt moves whenever content is appended and is compared against the
// newest question's CreatedAt to decide whether the pool is stale.
type SubTopic struct {
	ID          int64     `json:"id"`
	MainTopicID int64     `json:"main_topic_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CoreContent *string   `json:"core_content"`
	SourceType  *string   `json:"source_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated by joined lookups for prompt/category construction.
	SubjectID     int64  `json:"-"`
	MainTopicName string `json:"-"`
	SubjectName   string `json:"-"`
}

// Category renders the full "subject > main topic > sub-topic" path.
func (st *SubTopic) Category() string {
	if st.SubjectName == "" || st.MainTopicName == "" {
		return st.Name
	}
	return st.SubjectName + " > " + st.MainTopicName + " > " + st.Name
}

type SubTopicListResponse struct {
	SubTopics []SubTopic `json:"sub_topics"`
	Total     int        `json:"total"`
}

type CoreContentResponse struct {
	SubTopicID  int64     `json:"sub_topic_id"`
	Name        string    `json:"name"`
	CoreContent string    `json:"core_content"`
	SourceType  string    `json:"source_type"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CoreContentUpdateRequest appends a fragment to a sub-topic's core content.
// SourceType "url" resolves the fragment from a video transcript first.
type CoreContentUpdateRequest struct {
	SourceType string `json:"source_type"`
	Content    string `json:"content"`
}
