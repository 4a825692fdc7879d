package gateway

import "credvault/internal/domain/credential"

type authInput struct {
	Body struct {
		Token string `json:"token" doc:"Gateway token issued to the extension"`
	}
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type credentialsInput struct {
	URL   string `query:"url" doc:"Requested page origin"`
	Token string `query:"token" doc:"Gateway token issued to the extension"`
}

type credentialsOutput struct {
	Body credentialsResponse
}

type credentialsResponse struct {
	Status      string                       `json:"status"`
	Credentials []credential.PlainCredential `json:"credentials"`
}

type updateUsageInput struct {
	Body struct {
		ID    int    `json:"id" doc:"Credential id to mark used"`
		Token string `json:"token"`
	}
}

type autoFillInput struct {
	ID   int `path:"id"`
	Body struct {
		Token   string `json:"token"`
		Enabled bool   `json:"enabled"`
	}
}

type patternInput struct {
	ID   int `path:"id"`
	Body struct {
		Token   string `json:"token"`
		Pattern string `json:"pattern"`
	}
}
