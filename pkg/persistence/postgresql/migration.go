package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Inbox emails. The engine owns only the mutable flags; the inbox
			-- sync service owns everything else about the message.
			CREATE TABLE emails (
				id UUID PRIMARY KEY,
				account_id UUID NOT NULL,
				from_address VARCHAR(320) NOT NULL DEFAULT '',
				to_addresses JSONB NOT NULL DEFAULT '[]',
				subject TEXT NOT NULL DEFAULT '',
				body_text TEXT NOT NULL DEFAULT '',
				body_html TEXT NOT NULL DEFAULT '',
				has_attachments BOOLEAN NOT NULL DEFAULT FALSE,
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				is_starred BOOLEAN NOT NULL DEFAULT FALSE,
				is_important BOOLEAN NOT NULL DEFAULT FALSE,
				is_archived BOOLEAN NOT NULL DEFAULT FALSE,
				is_spam BOOLEAN NOT NULL DEFAULT FALSE,
				is_trashed BOOLEAN NOT NULL DEFAULT FALSE,
				folder VARCHAR(255) NOT NULL DEFAULT 'inbox',
				labels JSONB NOT NULL DEFAULT '[]',
				received_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_emails_account_id ON emails(account_id);
			CREATE INDEX idx_emails_received_at ON emails(received_at);
			CREATE INDEX idx_emails_deleted_at ON emails(deleted_at);

			CREATE TABLE email_rules (
				id UUID PRIMARY KEY,
				account_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				enabled BOOLEAN NOT NULL DEFAULT TRUE,
				priority INT NOT NULL DEFAULT 0,
				conditions JSONB NOT NULL,
				actions JSONB NOT NULL,
				match_count BIGINT NOT NULL DEFAULT 0,
				last_triggered_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_email_rules_account ON email_rules(account_id, enabled, priority);

			CREATE TABLE call_records (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL,
				caller_name VARCHAR(255) NOT NULL DEFAULT '',
				caller_phone VARCHAR(50) NOT NULL DEFAULT '',
				topic TEXT NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				sentiment VARCHAR(50) NOT NULL DEFAULT '',
				quality_rating INT NOT NULL DEFAULT 0,
				follow_up_needed BOOLEAN NOT NULL DEFAULT FALSE,
				follow_up_reason TEXT NOT NULL DEFAULT '',
				duration_seconds INT NOT NULL DEFAULT 0,
				triggered_workflow_ids JSONB NOT NULL DEFAULT '[]',
				analyzed_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_call_records_project_id ON call_records(project_id);
			CREATE INDEX idx_call_records_analyzed_at ON call_records(analyzed_at);

			CREATE TABLE call_workflows (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				trigger_conditions JSONB NOT NULL,
				actions JSONB NOT NULL,
				total_executions BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_call_workflows_project ON call_workflows(project_id, active);

			-- Append-only audit of workflow runs.
			CREATE TABLE workflow_execution_logs (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES call_workflows(id) ON DELETE CASCADE,
				call_record_id UUID NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('success', 'partial', 'failed')),
				actions_executed JSONB NOT NULL DEFAULT '[]',
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_execution_logs_workflow ON workflow_execution_logs(workflow_id, created_at);
			CREATE INDEX idx_execution_logs_call_record ON workflow_execution_logs(call_record_id);

			CREATE TABLE email_templates (
				id UUID PRIMARY KEY,
				organization_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				subject TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE sms_templates (
				id UUID PRIMARY KEY,
				organization_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				body TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE projects (
				id UUID PRIMARY KEY,
				organization_id UUID NOT NULL
			);

			CREATE INDEX idx_projects_organization ON projects(organization_id);

			-- Per-organization messaging credentials. Secrets live in explicit
			-- columns, never in JSONB, so they cannot leak through JSON dumps.
			CREATE TABLE organization_credentials (
				organization_id UUID PRIMARY KEY,
				smtp_host VARCHAR(255),
				smtp_port INT,
				smtp_username VARCHAR(255),
				smtp_password VARCHAR(255),
				smtp_from_name VARCHAR(255),
				smtp_from_email VARCHAR(320),
				twilio_account_sid VARCHAR(255),
				twilio_auth_token VARCHAR(255),
				twilio_from_number VARCHAR(50),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE tasks (
				id UUID PRIMARY KEY,
				project_id UUID NOT NULL,
				title VARCHAR(500) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL DEFAULT 'todo',
				assigned_to VARCHAR(255) NOT NULL DEFAULT '',
				due_at TIMESTAMP WITH TIME ZONE,
				metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tasks_project ON tasks(project_id, status);
		`,
	}
}
