package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/frahmantamala/meeting-manager/internal"
	meetingDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/meeting"
	"github.com/frahmantamala/meeting-manager/internal/storage"
)

// FileRepository stores attachment metadata. Lookups return nil, nil when
// nothing matches.
type FileRepository interface {
	CreateFile(ctx context.Context, f *meetingDatamodel.MeetingFile) error
	ListFiles(ctx context.Context, meetingID int64) ([]*meetingDatamodel.MeetingFile, error)
	GetFile(ctx context.Context, meetingID, id int64) (*meetingDatamodel.MeetingFile, error)
	DeleteFile(ctx context.Context, meetingID, id int64) error
}

// FileStore holds attachment bytes under an object key.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Upload is one attachment as received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func fileFromDataModel(row *meetingDatamodel.MeetingFile) *File {
	return &File{
		ID:           row.ID,
		MeetingID:    row.MeetingID,
		ObjectKey:    row.ObjectKey,
		FileName:     row.FileName,
		ContentType:  row.ContentType,
		SizeBytes:    row.SizeBytes,
		UploadedByID: row.UploadedByID,
		UploadedAt:   row.UploadedAt,
	}
}

// cleanFileName drops any directory part a client sent along.
func cleanFileName(fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

// objectKey places attachments under meeting_files/<meeting id>/.
func objectKey(meetingID int64, name string) string {
	return fmt.Sprintf("meeting_files/%d/%s-%s", meetingID, uuid.NewString(), name)
}

func (s *Service) filesEnabled() bool {
	return s.files != nil && s.store != nil
}

func (s *Service) UploadFile(ctx context.Context, actor, meetingID int64, up Upload) (*File, error) {
	if err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	if !s.filesEnabled() {
		return nil, ErrStorageDisabled
	}
	if up.Body == nil || up.Size <= 0 {
		return nil, ErrFileRequired
	}
	if s.maxUploadBytes > 0 && up.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if _, err := s.requireMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := cleanFileName(up.FileName)
	key := objectKey(meetingID, name)
	if err := s.store.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		s.logger.Error("failed to store file", "error", err, "meeting_id", meetingID, "key", key)
		return nil, internal.NewInternalError("failed to store file", err)
	}

	row := &meetingDatamodel.MeetingFile{
		MeetingID:    meetingID,
		ObjectKey:    key,
		FileName:     name,
		ContentType:  contentType,
		SizeBytes:    up.Size,
		UploadedByID: actor,
	}
	if err := s.files.CreateFile(ctx, row); err != nil {
		s.removeBlobs(ctx, []string{key})
		return nil, err
	}

	s.logger.Info("file uploaded", "meeting_id", meetingID, "file_id", row.ID, "size", up.Size)
	return fileFromDataModel(row), nil
}

func (s *Service) ListFiles(ctx context.Context, meetingID int64) ([]*File, error) {
	if _, err := s.requireMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	if s.files == nil {
		return []*File{}, nil
	}
	rows, err := s.files.ListFiles(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	out := make([]*File, 0, len(rows))
	for _, r := range rows {
		out = append(out, fileFromDataModel(r))
	}
	return out, nil
}

// OpenFile returns the file metadata and a reader the caller must close.
func (s *Service) OpenFile(ctx context.Context, meetingID, fileID int64) (*File, io.ReadCloser, error) {
	if !s.filesEnabled() {
		return nil, nil, ErrStorageDisabled
	}
	row, err := s.files.GetFile(ctx, meetingID, fileID)
	if err != nil {
		return nil, nil, err
	}
	if row == nil {
		return nil, nil, ErrFileNotFound
	}
	body, err := s.store.Get(ctx, row.ObjectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("file metadata without stored object", "file_id", fileID, "key", row.ObjectKey)
		return nil, nil, ErrFileNotFound.WithCause(err)
	}
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to read file", err)
	}
	return fileFromDataModel(row), body, nil
}

func (s *Service) DeleteFile(ctx context.Context, meetingID, fileID int64) error {
	if !s.filesEnabled() {
		return ErrStorageDisabled
	}
	row, err := s.files.GetFile(ctx, meetingID, fileID)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrFileNotFound
	}
	if err := s.files.DeleteFile(ctx, meetingID, fileID); err != nil {
		return err
	}
	s.removeBlobs(ctx, []string{row.ObjectKey})
	return nil
}

// removeBlobs deletes stored objects and only logs failures.
func (s *Service) removeBlobs(ctx context.Context, keys []string) {
	if s.store == nil {
		return
	}
	for _, key := range keys {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored file", "error", err, "key", key)
		}
	}
}
