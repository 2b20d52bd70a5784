// Package testenv starts throwaway infrastructure containers for
// integration work: a MariaDB with the CMS schema applied and,
// optionally, the CMS server image itself.
package testenv

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lumenworks/sitecms/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestContainers struct {
	Network      *testcontainers.DockerNetwork
	DBContainer  testcontainers.Container
	CMSContainer testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.CMSContainer != nil {
		if err := tc.CMSContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate CMS: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateAllTestContainers starts the database, applies the schema and
// starts the CMS server container. Expects the environment to carry the
// same variables the server reads, plus DB_IMAGE, DB_ROOT_PASSWORD and
// CMS_IMAGE.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create and start the Database container
	dbNetworkName := os.Getenv("DB_HOST")
	tcpDbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
				"MYSQL_DATABASE":      os.Getenv("DB_DATABASE"),
				"MYSQL_USER":          os.Getenv("DB_USER"),
				"MYSQL_PASSWORD":      os.Getenv("DB_PASSWORD"),
			},
			WaitingFor: wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Database")
	}
	testContainers.DBContainer = dbContainer

	// Initialize the database schema
	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
	if err := performDBInit(t, testContainers, dbHost, dbPort); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	imageName := os.Getenv("CMS_IMAGE")
	if imageName == "" {
		imageName = "sitecms-test:latest"
	}

	cmsPortNumber := os.Getenv("PORT")
	tcpCmsPort, err := nat.NewPort("tcp", cmsPortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create CMS port")
	}

	cmsContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(tcpCmsPort)},
		Env: map[string]string{
			"DB_TYPE":        "mariadb",
			"DB_HOST":        dbNetworkName,
			"DB_PORT":        os.Getenv("DB_PORT"),
			"DB_DATABASE":    os.Getenv("DB_DATABASE"),
			"DB_USER":        os.Getenv("DB_USER"),
			"DB_PASSWORD":    os.Getenv("DB_PASSWORD"),
			"JWT_SECRET":     os.Getenv("JWT_SECRET"),
			"ADMIN_USER":     os.Getenv("ADMIN_USER"),
			"ADMIN_PASSWORD": os.Getenv("ADMIN_PASSWORD"),
			"PORT":           cmsPortNumber,
		},
		WaitingFor: wait.ForHTTP("/metrics").WithPort(tcpCmsPort).WithStartupTimeout(30 * time.Second),
		Networks:   []string{networkName},
	}

	// Check if image exists, otherwise build from the repo Dockerfile
	exists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}
	if exists {
		logMessage(t, "Image %s exists, reusing...", imageName)
		cmsContainerRequest.Image = imageName
	} else {
		logMessage(t, "Image %s does not exist, building...", imageName)
		buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "../.."
		}
		sessionID := uuid.New().String()
		imageNameParts := strings.Split(imageName, ":")
		cmsContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       imageNameParts[0],
			Tag:        imageNameParts[1],
			KeepImage:  true,
			BuildArgs: map[string]*string{
				"RESOURCE_REAPER_SESSION_ID": &sessionID,
			},
			PrintBuildLog: true,
		}
	}

	// Create and start the CMS container
	cmsContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: cmsContainerRequest,
		Started:          true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start CMS")
	}
	testContainers.CMSContainer = cmsContainer

	// Log the localhost and mapped ports for the CMS
	cmsHost, _ := cmsContainer.Host(ctx)
	cmsPort, _ := cmsContainer.MappedPort(ctx, tcpCmsPort)
	logMessage(t, "BASE_URL=%s:%s", cmsHost, cmsPort.Port())

	logMessage(t, "CMS testcontainer started successfully")
	return testContainers, nil
}

func performDBInit(t *testing.T, testContainers *TestContainers, dbHost string, dbPort nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/%s", os.Getenv("DB_ROOT_PASSWORD"), dbHost, dbPort.Port(), os.Getenv("DB_DATABASE")))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to connect to MariaDB for setup")
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "MariaDB not ready after 30 seconds")
	}

	if err := executeSQL(db, data.InitdbMariaDBTables); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to execute tables init sql")
	}
	if err := executeSQL(db, data.InitdbMariaDBPrivileges); err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to execute privileges init sql")
	}

	return nil
}

func executeSQL(db *sql.DB, sql string) error {
	lines := strings.Split(sql, "\n")

	var ncls []string
	for _, l := range lines {
		ncl := excludeComment(l)
		ncls = append(ncls, ncl)
	}

	l := strings.Join(ncls, "")
	queries := strings.Split(l, ";")
	queries = queries[:len(queries)-1]

	for _, q := range queries {
		_, err := db.Exec(q)
		if err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var ei int

		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			ei = strings.Index(ck, d)
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			ei = strings.Index(ck, s)
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
