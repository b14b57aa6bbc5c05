package store

const (
	ListMemoriesQuery = `
		MATCH (m:Memory {elder_id: $elder_id})
		WHERE ($since IS NULL OR m.created_at >= $since)
		  AND ($until IS NULL OR m.created_at < $until)
		RETURN m.id AS id, m.elder_id AS elder_id, m.raw_text AS raw_text, m.type AS type,
		       m.emotional_tone AS emotional_tone, m.tags AS tags, m.image_url AS image_url,
		       m.created_at AS created_at, m.updated_at AS updated_at
		ORDER BY m.created_at DESC
		LIMIT $limit
	`

	ListSignalsQuery = `
		MATCH (s:BehavioralSignal {elder_id: $elder_id})
		WHERE ($since IS NULL OR s.detected_at >= $since)
		  AND ($until IS NULL OR s.detected_at < $until)
		RETURN s.id AS id, s.elder_id AS elder_id, s.signal_type AS signal_type,
		       s.severity AS severity, s.description AS description, s.detected_at AS detected_at
		ORDER BY s.detected_at DESC
		LIMIT $limit
	`

	ListHealthMetricsQuery = `
		MATCH (h:HealthMetric {elder_id: $elder_id})
		WHERE ($since IS NULL OR h.recorded_at >= $since)
		  AND ($until IS NULL OR h.recorded_at < $until)
		RETURN h.id AS id, h.elder_id AS elder_id, h.metric_type AS metric_type,
		       h.value AS value, h.unit AS unit, h.recorded_at AS recorded_at
		ORDER BY h.recorded_at DESC
		LIMIT $limit
	`

	ListHealthAlertsQuery = `
		MATCH (a:HealthAlert {elder_id: $elder_id})
		WHERE ($since IS NULL OR a.created_at >= $since)
		  AND ($until IS NULL OR a.created_at < $until)
		  AND (NOT $unresolved_only OR coalesce(a.resolved, false) = false)
		RETURN a.id AS id, a.elder_id AS elder_id, a.alert_type AS alert_type,
		       a.severity AS severity, a.message AS message,
		       coalesce(a.resolved, false) AS resolved, a.created_at AS created_at
		ORDER BY a.created_at DESC
		LIMIT $limit
	`

	SaveQuestionQuery = `
		CREATE (q:Question {id: $id, elder_id: $elder_id, question: $question, created_at: $created_at})
		RETURN q.id AS id
	`

	AnswerQuestionQuery = `
		MATCH (q:Question {id: $id})
		SET q.answer = $answer, q.answered_at = $answered_at
		RETURN q.id AS id
	`
)

var indexQueries = []string{
	"CREATE INDEX ON :Memory(elder_id);",
	"CREATE INDEX ON :BehavioralSignal(elder_id);",
	"CREATE INDEX ON :HealthMetric(elder_id);",
	"CREATE INDEX ON :HealthAlert(elder_id);",
	"CREATE INDEX ON :Question(id);",
}
