package video

import "time"

type muxPlan struct {
	limit          time.Duration
	audioDuration  time.Duration
	audioTruncated bool
}

// planMux decides how narration fits the video. Audio longer than the video
// is cut at the video length; shorter audio plays once and the rest is silent.
func planMux(videoDuration, audioDuration time.Duration) muxPlan {
	if audioDuration > videoDuration {
		return muxPlan{limit: videoDuration, audioDuration: videoDuration, audioTruncated: true}
	}
	return muxPlan{audioDuration: audioDuration}
}

func frameCount(fps, seconds int) int {
	if fps <= 0 || seconds <= 0 {
		return 0
	}
	return fps * seconds
}

func durationOf(frames, fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(fps)
}
