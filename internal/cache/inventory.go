package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix   = "user:%d"
	PostKeyPrefix   = "post:%d"
	DeviceKeyPrefix = "device:%d"
	UserStatsKey    = "users:stats"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	DeviceTTL    = 30 * time.Minute
	UserStatsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func DeviceKey(deviceID uint) string {
	return fmt.Sprintf(DeviceKeyPrefix, deviceID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserStatsKey)
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateDevice(ctx context.Context, deviceID uint) {
	Invalidate(ctx, DeviceKey(deviceID))
}
