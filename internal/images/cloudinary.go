package images

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"recordmoa/pkg/utils"
)

const DefaultBaseURL = "https://api.cloudinary.com"

// Client talks to the Cloudinary upload API. Uploads are unsigned
// (preset-based); destroy requires the API key/secret pair.
type Client struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	BaseURL      string
	HTTPClient   *http.Client
}

func NewClient(cfg utils.CloudinaryConfig) *Client {
	return &Client{
		CloudName:    cfg.CloudName,
		UploadPreset: cfg.UploadPreset,
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		BaseURL:      DefaultBaseURL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the file with the unsigned upload preset and returns
// the delivery URL.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	if c.CloudName == "" || c.UploadPreset == "" {
		return "", fmt.Errorf("cloudinary not configured")
	}

	var body strings.Builder
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	_ = w.WriteField("upload_preset", c.UploadPreset)
	if folder != "" {
		_ = w.WriteField("folder", folder)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.BaseURL, c.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error.Message != "" {
			return "", fmt.Errorf("upload failed: %s", out.Error.Message)
		}
		return "", fmt.Errorf("upload failed: status %d", resp.StatusCode)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("upload failed: empty url in response")
	}
	return out.SecureURL, nil
}

type destroyResponse struct {
	Result string `json:"result"`
}

// Destroy removes an uploaded image by public id. "not found" counts
// as success: the image is gone either way.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("cloudinary api credentials not configured")
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", ts)
	form.Set("api_key", c.APIKey)
	form.Set("signature", c.sign(publicID, ts))

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.BaseURL, c.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroy: %w", err)
	}
	defer resp.Body.Close()

	var out destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	if out.Result != "ok" && out.Result != "not found" {
		return fmt.Errorf("destroy failed: %s", out.Result)
	}
	return nil
}

// sign produces the request signature: SHA-1 over the sorted
// parameters with the API secret appended.
func (c *Client) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.APISecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL extracts the public id from a delivery URL, e.g.
// .../upload/v12345/recordmoa/uid/movie/abc.jpg -> recordmoa/uid/movie/abc.
// Empty result means the URL is not a Cloudinary delivery URL.
func PublicIDFromURL(imageURL string) string {
	parts := strings.Split(imageURL, "/")
	uploadIdx := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIdx = i
			break
		}
	}
	// the segment right after "upload" is the version marker
	if uploadIdx == -1 || uploadIdx+2 >= len(parts) {
		return ""
	}

	path := strings.Join(parts[uploadIdx+2:], "/")
	if dot := strings.LastIndex(path, "."); dot > 0 {
		path = path[:dot]
	}
	return path
}

type TransformOptions struct {
	Width   int
	Height  int
	Quality string // "auto" or a number
	Format  string // "auto", "webp", ...
	Crop    string // "fill", "fit", "scale", "limit"
}

// TransformURL inserts a transformation segment after /upload/ in a
// delivery URL. Unknown URLs are returned unchanged.
func TransformURL(imageURL string, opts TransformOptions) string {
	parts := strings.SplitN(imageURL, "/upload/", 2)
	if len(parts) != 2 {
		return imageURL
	}

	quality := opts.Quality
	if quality == "" {
		quality = "auto"
	}
	format := opts.Format
	if format == "" {
		format = "auto"
	}
	crop := opts.Crop
	if crop == "" {
		crop = "fill"
	}

	var segs []string
	if opts.Width > 0 || opts.Height > 0 {
		var size []string
		if opts.Width > 0 {
			size = append(size, fmt.Sprintf("w_%d", opts.Width))
		}
		if opts.Height > 0 {
			size = append(size, fmt.Sprintf("h_%d", opts.Height))
		}
		size = append(size, "c_"+crop)
		segs = append(segs, strings.Join(size, ","))
	}
	segs = append(segs, "q_"+quality, "f_"+format)

	return parts[0] + "/upload/" + strings.Join(segs, "/") + "/" + parts[1]
}

// ThumbnailURL is the list-view variant.
func ThumbnailURL(imageURL string) string {
	return TransformURL(imageURL, TransformOptions{Width: 300})
}

// DetailURL is the detail-page variant.
func DetailURL(imageURL string) string {
	return TransformURL(imageURL, TransformOptions{Width: 1200})
}

// ProfileURL is the square avatar variant.
func ProfileURL(imageURL string) string {
	return TransformURL(imageURL, TransformOptions{Width: 200, Height: 200, Crop: "fill"})
}
