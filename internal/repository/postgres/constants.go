package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errUserNotFound       = "user not found"
	errChurchNotFound     = "church not found"
	errEventNotFound      = "event not found"
	errProjectNotFound    = "project not found"
	errMediaNotFound      = "media not found"
	errCommentNotFound    = "comment not found"
	errShareTokenNotFound = "share token not found"
	errOwnerNotFound      = "event or project not found"

	errFailedCommitTransactionFmt     = "failed to commit transaction: %w"
	errFailedCreateChurchFmt          = "failed to create church: %w"
	errFailedCreateCommentFmt         = "failed to create comment: %w"
	errFailedCreateConnectionPoolFmt  = "failed to create connection pool: %w"
	errFailedCreateEventFmt           = "failed to create event: %w"
	errFailedCreateMediaFmt           = "failed to create media: %w"
	errFailedCreateMigrationsTableFmt = "failed to create migrations table: %w"
	errFailedCreateProjectFmt         = "failed to create project: %w"
	errFailedCreateShareTokenFmt      = "failed to create share token: %w"
	errFailedCreateUserFmt            = "failed to create user: %w"
	errFailedCreateVersionFmt         = "failed to create media version: %w"
	errFailedDeleteChurchFmt          = "failed to delete church: %w"
	errFailedDeleteCommentFmt         = "failed to delete comment: %w"
	errFailedDeleteEventFmt           = "failed to delete event: %w"
	errFailedDeleteProjectFmt         = "failed to delete project: %w"
	errFailedGetChurchFmt             = "failed to get church: %w"
	errFailedGetCommentFmt            = "failed to get comment: %w"
	errFailedGetEventFmt              = "failed to get event: %w"
	errFailedGetMediaFmt              = "failed to get media: %w"
	errFailedGetProjectFmt            = "failed to get project: %w"
	errFailedGetShareTokenFmt         = "failed to get share token: %w"
	errFailedGetUserFmt               = "failed to get user: %w"
	errFailedListAppliedMigrationsFmt = "failed to list applied migrations: %w"
	errFailedListChurchesFmt          = "failed to list churches: %w"
	errFailedListCommentsFmt          = "failed to list comments: %w"
	errFailedListEventsFmt            = "failed to list events: %w"
	errFailedListMediaFmt             = "failed to list media: %w"
	errFailedListProjectsFmt          = "failed to list projects: %w"
	errFailedListShareTokensFmt       = "failed to list share tokens: %w"
	errFailedListStorageKeysFmt       = "failed to list storage keys: %w"
	errFailedListUsersFmt             = "failed to list users: %w"
	errFailedListVersionsFmt          = "failed to list media versions: %w"
	errFailedParseDatabaseConfigFmt   = "failed to parse database config: %w"
	errFailedPingDatabaseFmt          = "failed to ping database: %w"
	errFailedReadMigrationsFmt        = "failed to read migrations: %w"
	errFailedRecordTokenUsageFmt      = "failed to record token usage: %w"
	errFailedScanChurchFmt            = "failed to scan church: %w"
	errFailedScanCommentFmt           = "failed to scan comment: %w"
	errFailedScanEventFmt             = "failed to scan event: %w"
	errFailedScanMediaFmt             = "failed to scan media: %w"
	errFailedScanProjectFmt           = "failed to scan project: %w"
	errFailedScanShareTokenFmt        = "failed to scan share token: %w"
	errFailedScanUserFmt              = "failed to scan user: %w"
	errFailedScanVersionFmt           = "failed to scan media version: %w"
	errFailedStartTransactionFmt      = "failed to start transaction: %w"
	errFailedUpdateChurchFmt          = "failed to update church: %w"
	errFailedUpdateEventFmt           = "failed to update event: %w"
	errFailedUpdateMediaFmt           = "failed to update media: %w"
	errFailedUpdateMediaStatusFmt     = "failed to update media status: %w"
	errFailedUpdateProjectFmt         = "failed to update project: %w"
	errFailedUpdateUserFmt            = "failed to update user: %w"
	errIterateUsersFmt                = "error iterating users: %w"
	errFailedReadMigrationFmt         = "failed to read migration %s: %w"
	errFailedRunMigrationFmt          = "failed to run migration %s (statement %d): %w"
	errFailedRecordMigrationFmt       = "failed to record migration %s: %w"
)

var (
	errFailedCommitTransaction     = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }
	errFailedCreateChurch          = func(err error) error { return fmt.Errorf(errFailedCreateChurchFmt, err) }
	errFailedCreateComment         = func(err error) error { return fmt.Errorf(errFailedCreateCommentFmt, err) }
	errFailedCreateConnectionPool  = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateEvent           = func(err error) error { return fmt.Errorf(errFailedCreateEventFmt, err) }
	errFailedCreateMedia           = func(err error) error { return fmt.Errorf(errFailedCreateMediaFmt, err) }
	errFailedCreateMigrationsTable = func(err error) error { return fmt.Errorf(errFailedCreateMigrationsTableFmt, err) }
	errFailedCreateProject         = func(err error) error { return fmt.Errorf(errFailedCreateProjectFmt, err) }
	errFailedCreateShareToken      = func(err error) error { return fmt.Errorf(errFailedCreateShareTokenFmt, err) }
	errFailedCreateUser            = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedCreateVersion         = func(err error) error { return fmt.Errorf(errFailedCreateVersionFmt, err) }
	errFailedDeleteChurch          = func(err error) error { return fmt.Errorf(errFailedDeleteChurchFmt, err) }
	errFailedDeleteComment         = func(err error) error { return fmt.Errorf(errFailedDeleteCommentFmt, err) }
	errFailedDeleteEvent           = func(err error) error { return fmt.Errorf(errFailedDeleteEventFmt, err) }
	errFailedDeleteProject         = func(err error) error { return fmt.Errorf(errFailedDeleteProjectFmt, err) }
	errFailedGetChurch             = func(err error) error { return fmt.Errorf(errFailedGetChurchFmt, err) }
	errFailedGetComment            = func(err error) error { return fmt.Errorf(errFailedGetCommentFmt, err) }
	errFailedGetEvent              = func(err error) error { return fmt.Errorf(errFailedGetEventFmt, err) }
	errFailedGetMedia              = func(err error) error { return fmt.Errorf(errFailedGetMediaFmt, err) }
	errFailedGetProject            = func(err error) error { return fmt.Errorf(errFailedGetProjectFmt, err) }
	errFailedGetShareToken         = func(err error) error { return fmt.Errorf(errFailedGetShareTokenFmt, err) }
	errFailedGetUser               = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListAppliedMigrations = func(err error) error { return fmt.Errorf(errFailedListAppliedMigrationsFmt, err) }
	errFailedListChurches          = func(err error) error { return fmt.Errorf(errFailedListChurchesFmt, err) }
	errFailedListComments          = func(err error) error { return fmt.Errorf(errFailedListCommentsFmt, err) }
	errFailedListEvents            = func(err error) error { return fmt.Errorf(errFailedListEventsFmt, err) }
	errFailedListMedia             = func(err error) error { return fmt.Errorf(errFailedListMediaFmt, err) }
	errFailedListProjects          = func(err error) error { return fmt.Errorf(errFailedListProjectsFmt, err) }
	errFailedListShareTokens       = func(err error) error { return fmt.Errorf(errFailedListShareTokensFmt, err) }
	errFailedListStorageKeys       = func(err error) error { return fmt.Errorf(errFailedListStorageKeysFmt, err) }
	errFailedListUsers             = func(err error) error { return fmt.Errorf(errFailedListUsersFmt, err) }
	errFailedListVersions          = func(err error) error { return fmt.Errorf(errFailedListVersionsFmt, err) }
	errFailedParseDatabaseConfig   = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase          = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedReadMigrations        = func(err error) error { return fmt.Errorf(errFailedReadMigrationsFmt, err) }
	errFailedRecordTokenUsage      = func(err error) error { return fmt.Errorf(errFailedRecordTokenUsageFmt, err) }
	errFailedScanChurch            = func(err error) error { return fmt.Errorf(errFailedScanChurchFmt, err) }
	errFailedScanComment           = func(err error) error { return fmt.Errorf(errFailedScanCommentFmt, err) }
	errFailedScanEvent             = func(err error) error { return fmt.Errorf(errFailedScanEventFmt, err) }
	errFailedScanMedia             = func(err error) error { return fmt.Errorf(errFailedScanMediaFmt, err) }
	errFailedScanProject           = func(err error) error { return fmt.Errorf(errFailedScanProjectFmt, err) }
	errFailedScanShareToken        = func(err error) error { return fmt.Errorf(errFailedScanShareTokenFmt, err) }
	errFailedScanUser              = func(err error) error { return fmt.Errorf(errFailedScanUserFmt, err) }
	errFailedScanVersion           = func(err error) error { return fmt.Errorf(errFailedScanVersionFmt, err) }
	errFailedStartTransaction      = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedUpdateChurch          = func(err error) error { return fmt.Errorf(errFailedUpdateChurchFmt, err) }
	errFailedUpdateEvent           = func(err error) error { return fmt.Errorf(errFailedUpdateEventFmt, err) }
	errFailedUpdateMedia           = func(err error) error { return fmt.Errorf(errFailedUpdateMediaFmt, err) }
	errFailedUpdateMediaStatus     = func(err error) error { return fmt.Errorf(errFailedUpdateMediaStatusFmt, err) }
	errFailedUpdateProject         = func(err error) error { return fmt.Errorf(errFailedUpdateProjectFmt, err) }
	errFailedUpdateUser            = func(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
	errIterateUsers                = func(err error) error { return fmt.Errorf(errIterateUsersFmt, err) }
)

func errFailedReadMigration(name string, err error) error {
	return fmt.Errorf(errFailedReadMigrationFmt, name, err)
}

func errFailedRunMigration(name string, statement int, err error) error {
	return fmt.Errorf(errFailedRunMigrationFmt, name, statement, err)
}

func errFailedRecordMigration(name string, err error) error {
	return fmt.Errorf(errFailedRecordMigrationFmt, name, err)
}
