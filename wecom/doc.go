// Package wecom is a client for the WeCom (WeChat Work) temporary media API.
//
// It uploads blobs with cgi-bin/media/upload and streams them back with
// cgi-bin/media/get. Obtaining and refreshing access tokens is not handled
// here: pass a fixed token through configuration or plug a TokenSource.
//
// # Configuration
//
//	BEAVER_WECOM_BASE_URL=https://qyapi.weixin.qq.com
//	BEAVER_WECOM_ACCESS_TOKEN=...
//	BEAVER_WECOM_TIMEOUT=30s
//	BEAVER_WECOM_RATE_LIMIT=20
//	BEAVER_WECOM_RATE_BURST=20
//	BEAVER_WECOM_ENABLE_LOGGING=false
//	BEAVER_WECOM_LOG_LEVEL=info
//	BEAVER_WECOM_DEBUG=false
//
// # Usage
//
//	client, err := wecom.New(wecom.Config{
//	    BaseURL:     "https://qyapi.weixin.qq.com",
//	    AccessToken: token,
//	    Timeout:     30 * time.Second,
//	})
//
//	res, err := client.UploadMedia(ctx, wecom.MediaTypeFile, "report.pdf", f)
//
//	media, err := client.GetMedia(ctx, res.MediaID)
//	if err != nil {
//	    return err
//	}
//	defer media.Body.Close()
//
// # Profiles
//
// Several corporate apps can be addressed by name. A profile is either
// registered in code or read from its own variables:
//
//	wecom.RegisterProfile("sales", salesClient)
//
//	// or BEAVER_WECOM_HR_ACCESS_TOKEN=... and then
//	hr, err := wecom.Profile("hr")
//
// # Errors
//
// Uploads the platform refuses fail with ErrUploadRejected, downloads of
// unknown or expired media fail with ErrMediaNotFound. Both wrap an *APIError
// when the platform returned an error code.
package wecom
