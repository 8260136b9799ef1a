package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"outreach/internal/content"
	"outreach/pkg/logging"
)

const (
	youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"
	uploadTimeout    = 10 * time.Minute

	PrivacyPrivate  = "private"
	PrivacyUnlisted = "unlisted"
	PrivacyPublic   = "public"
)

type YouTubeUploader struct {
	token     string
	client    *http.Client
	uploadURL string
	logger    logging.Logger
}

func NewYouTubeUploader(token string, logger logging.Logger) *YouTubeUploader {
	return &YouTubeUploader{
		token:     token,
		client:    &http.Client{Timeout: uploadTimeout},
		uploadURL: youtubeUploadURL,
		logger:    logger,
	}
}

type youtubeMetadata struct {
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CategoryID  string `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
		PublishAt     string `json:"publishAt,omitempty"`
	} `json:"status"`
}

// Upload pushes a local video file through the Data API's resumable
// upload flow and returns the new video ID. A publishAt timestamp forces
// the upload private; YouTube flips it public at the scheduled time.
func (u *YouTubeUploader) Upload(ctx context.Context, videoPath string, post content.YouTubePost, privacyStatus, publishAt string) (Result, error) {
	at, err := ParseScheduleTime(publishAt)
	if err != nil {
		return failed(err), err
	}
	if privacyStatus == "" {
		privacyStatus = PrivacyPrivate
	}
	switch privacyStatus {
	case PrivacyPrivate, PrivacyUnlisted, PrivacyPublic:
	default:
		err := fmt.Errorf("%w: unknown privacy status %q", ErrValidation, privacyStatus)
		return failed(err), err
	}
	if u.token == "" {
		err := fmt.Errorf("%w: YOUTUBE_OAUTH_TOKEN must be set", ErrAuthentication)
		return failed(err), err
	}

	video, err := os.Open(videoPath)
	if err != nil {
		err = fmt.Errorf("%w: open video file: %v", ErrValidation, err)
		return failed(err), err
	}
	defer video.Close()

	var meta youtubeMetadata
	meta.Snippet.Title = post.Title
	meta.Snippet.Description = post.Description
	meta.Snippet.CategoryID = "22"
	meta.Status.PrivacyStatus = privacyStatus
	if at != nil {
		meta.Status.PrivacyStatus = PrivacyPrivate
		meta.Status.PublishAt = at.UTC().Format(time.RFC3339)
	}

	location, err := u.startSession(ctx, meta)
	if err != nil {
		return failed(err), err
	}

	videoID, err := u.putVideo(ctx, location, video)
	if err != nil {
		return failed(err), err
	}

	log := u.logger.WithField("platform", "youtube").WithField("video_id", videoID)
	if at != nil {
		log.WithField("publish_at", meta.Status.PublishAt).Info("Video uploaded and scheduled")
	} else {
		log.Info("Video uploaded")
	}
	return Result{Success: true, PlatformRef: videoID, ScheduledFor: at}, nil
}

// startSession opens the resumable upload and returns the session URL
// from the Location header.
func (u *YouTubeUploader) startSession(ctx context.Context, meta youtubeMetadata) (string, error) {
	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: start upload session: %v", ErrAutomation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: youtube token rejected (status %d)", ErrAuthentication, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: upload session failed (status %d): %s", ErrAutomation, resp.StatusCode, detail)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: upload session missing Location header", ErrAutomation)
	}
	return location, nil
}

func (u *YouTubeUploader) putVideo(ctx context.Context, location string, video io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, location, video)
	if err != nil {
		return "", fmt.Errorf("build video request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	req.Header.Set("Content-Type", "video/*")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload video: %v", ErrAutomation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: video upload failed (status %d): %s", ErrAutomation, resp.StatusCode, detail)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", ErrAutomation, err)
	}
	return uploaded.ID, nil
}
