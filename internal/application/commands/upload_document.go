package commands

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	"github.com/nordviken/onboarding-backend/internal/infra/storage"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
)

type UploadDocument struct {
	uowFactory *dbs.UOWFactory
	storage    *storage.Storage
}

func NewUploadDocument(factory *dbs.UOWFactory, storage *storage.Storage) *UploadDocument {
	return &UploadDocument{uowFactory: factory, storage: storage}
}

func (c *UploadDocument) Execute(ctx context.Context, submissionID uuid.UUID, fileHeader *multipart.FileHeader, identity *auth.Identity) (resp *dto.DocumentUploadedResponse, err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	submission, err := repo.NewSubmissionRepo(tx).GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.CreatedBy != identity.UserID && !identity.Admin {
		return nil, errs.PermissionsError{Err: fmt.Errorf("submission %v belongs to another user", submissionID)}
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("err opening file, %v", err)
	}
	defer f.Close()

	documentID := uuid.New()
	var contentType *string
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		contentType = &ct
	}
	documentURL, err := c.storage.UploadDocument(ctx,
		fmt.Sprintf("documents/%s/%s", submissionID, documentID), contentType, f)
	if err != nil {
		return nil, fmt.Errorf("err uploading to s3, %v", err)
	}

	return &dto.DocumentUploadedResponse{
		DocumentID:  documentID.String(),
		DocumentURL: documentURL,
	}, nil
}
