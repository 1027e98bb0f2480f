package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL CHECK (role IN ('submitter', 'approver', 'assignee')),
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id               BIGSERIAL PRIMARY KEY,
		submitter_id     TEXT NOT NULL,
		assignee_id      TEXT,
		approver_id      TEXT,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		category         TEXT NOT NULL,
		location_detail  TEXT NOT NULL DEFAULT '',
		subcategory      TEXT NOT NULL DEFAULT '',
		floor            TEXT NOT NULL DEFAULT '',
		room             TEXT NOT NULL DEFAULT '',
		priority         TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('Low', 'Medium', 'High', 'Urgent')),
		status           TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN (
			'Pending', 'Approved', 'Assigned', 'InProgress', 'WorkerPending',
			'Completed', 'Resolved', 'Rejected', 'CannotBeResolved')),
		rejection_reason TEXT,
		resolution       TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		approved_at      TIMESTAMPTZ,
		assigned_at      TIMESTAMPTZ,
		resolved_at      TIMESTAMPTZ,
		rejected_at      TIMESTAMPTZ,
		time_taken_hours DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS complaints_submitter_idx ON complaints (submitter_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS complaints_assignee_idx ON complaints (assignee_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS complaints_status_idx ON complaints (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id               UUID PRIMARY KEY,
		complaint_id     BIGINT NOT NULL REFERENCES complaints (id),
		filename         TEXT NOT NULL,
		storage_path     TEXT NOT NULL,
		mime_type        TEXT NOT NULL,
		size             BIGINT NOT NULL,
		uploader_id      TEXT NOT NULL,
		is_proof_of_work BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS attachments_complaint_idx ON attachments (complaint_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id           UUID PRIMARY KEY,
		complaint_id BIGINT NOT NULL REFERENCES complaints (id),
		author_id    TEXT NOT NULL,
		body         TEXT NOT NULL CHECK (length(body) BETWEEN 1 AND 2000),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_complaint_idx ON comments (complaint_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           UUID PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		complaint_id BIGINT NOT NULL DEFAULT 0,
		title        TEXT NOT NULL,
		message      TEXT NOT NULL DEFAULT '',
		type         TEXT NOT NULL,
		is_read      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_id, is_read, created_at DESC)`,
}
