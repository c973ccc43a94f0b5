package agent

import (
	"context"
	"strings"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

const testNamespace = "fleet"

func testConfig() Config {
	return Config{
		Namespace:          testNamespace,
		ServiceAccountName: "bondctl-collector",
		Image:              "ghcr.io/nvidia/bondctl:latest",
		RunID:              "a1b2c3d4",
	}
}

func TestDeployerEnsureRBAC(t *testing.T) {
	clientset := fake.NewClientset()
	deployer := NewDeployer(clientset, testConfig())
	ctx := context.Background()

	t.Run("create ServiceAccount", func(t *testing.T) {
		if err := deployer.ensureServiceAccount(ctx); err != nil {
			t.Fatalf("failed to create ServiceAccount: %v", err)
		}

		sa, err := clientset.CoreV1().ServiceAccounts(testNamespace).
			Get(ctx, "bondctl-collector", metav1.GetOptions{})
		if err != nil {
			t.Fatalf("ServiceAccount not found: %v", err)
		}
		if sa.Labels["app.kubernetes.io/name"] != "bondctl" {
			t.Errorf("unexpected labels: %v", sa.Labels)
		}
	})

	t.Run("create Role", func(t *testing.T) {
		if err := deployer.ensureRole(ctx); err != nil {
			t.Fatalf("failed to create Role: %v", err)
		}

		role, err := clientset.RbacV1().Roles(testNamespace).
			Get(ctx, "bondctl-collector", metav1.GetOptions{})
		if err != nil {
			t.Fatalf("Role not found: %v", err)
		}
		if len(role.Rules) != 1 {
			t.Fatalf("expected 1 rule, got %d", len(role.Rules))
		}
		if role.Rules[0].Resources[0] != "configmaps" {
			t.Errorf("unexpected rule resources: %v", role.Rules[0].Resources)
		}
	})

	t.Run("create RoleBinding", func(t *testing.T) {
		if err := deployer.ensureRoleBinding(ctx); err != nil {
			t.Fatalf("failed to create RoleBinding: %v", err)
		}

		rb, err := clientset.RbacV1().RoleBindings(testNamespace).
			Get(ctx, "bondctl-collector", metav1.GetOptions{})
		if err != nil {
			t.Fatalf("RoleBinding not found: %v", err)
		}
		if rb.Subjects[0].Name != "bondctl-collector" {
			t.Errorf("unexpected subject: %v", rb.Subjects)
		}
	})

	t.Run("idempotent re-create", func(t *testing.T) {
		if err := deployer.ensureServiceAccount(ctx); err != nil {
			t.Errorf("second ensureServiceAccount should be no-op: %v", err)
		}
		if err := deployer.ensureRole(ctx); err != nil {
			t.Errorf("second ensureRole should be no-op: %v", err)
		}
		if err := deployer.ensureRoleBinding(ctx); err != nil {
			t.Errorf("second ensureRoleBinding should be no-op: %v", err)
		}
	})
}

func TestDeployerEnsureJob(t *testing.T) {
	clientset := fake.NewClientset()
	deployer := NewDeployer(clientset, testConfig())
	ctx := context.Background()

	if err := deployer.ensureJob(ctx, "worker-1"); err != nil {
		t.Fatalf("failed to create Job: %v", err)
	}

	job, err := clientset.BatchV1().Jobs(testNamespace).
		Get(ctx, deployer.JobName("worker-1"), metav1.GetOptions{})
	if err != nil {
		t.Fatalf("Job not found: %v", err)
	}

	spec := job.Spec.Template.Spec
	if spec.NodeName != "worker-1" {
		t.Errorf("expected Job pinned to worker-1, got %q", spec.NodeName)
	}
	if !spec.HostNetwork {
		t.Error("expected host network")
	}
	if spec.ServiceAccountName != "bondctl-collector" {
		t.Errorf("unexpected service account: %q", spec.ServiceAccountName)
	}
	args := spec.Containers[0].Args[0]
	if !strings.Contains(args, "collect -o cm://fleet/bondctl-samples-a1b2c3d4-worker-1") {
		t.Errorf("unexpected container args: %q", args)
	}
}

func TestDeployerEnsureJobBondFilter(t *testing.T) {
	clientset := fake.NewClientset()
	config := testConfig()
	config.BondFilter = "bond0"
	deployer := NewDeployer(clientset, config)
	ctx := context.Background()

	if err := deployer.ensureJob(ctx, "worker-1"); err != nil {
		t.Fatalf("failed to create Job: %v", err)
	}

	job, err := clientset.BatchV1().Jobs(testNamespace).
		Get(ctx, deployer.JobName("worker-1"), metav1.GetOptions{})
	if err != nil {
		t.Fatalf("Job not found: %v", err)
	}
	args := job.Spec.Template.Spec.Containers[0].Args[0]
	if !strings.Contains(args, "--bond bond0") {
		t.Errorf("expected bond filter in args, got %q", args)
	}
}

func TestDeployerCleanup(t *testing.T) {
	clientset := fake.NewClientset()
	deployer := NewDeployer(clientset, testConfig())
	ctx := context.Background()

	if err := deployer.ensureServiceAccount(ctx); err != nil {
		t.Fatal(err)
	}
	if err := deployer.ensureJob(ctx, "worker-1"); err != nil {
		t.Fatal(err)
	}

	t.Run("disabled is no-op", func(t *testing.T) {
		if err := deployer.Cleanup(ctx, []string{"worker-1"}, CleanupOptions{Enabled: false}); err != nil {
			t.Fatalf("disabled cleanup failed: %v", err)
		}
		if _, err := clientset.BatchV1().Jobs(testNamespace).
			Get(ctx, deployer.JobName("worker-1"), metav1.GetOptions{}); err != nil {
			t.Errorf("Job should survive disabled cleanup: %v", err)
		}
	})

	t.Run("enabled removes resources", func(t *testing.T) {
		if err := deployer.Cleanup(ctx, []string{"worker-1"}, CleanupOptions{Enabled: true}); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
		if _, err := clientset.BatchV1().Jobs(testNamespace).
			Get(ctx, deployer.JobName("worker-1"), metav1.GetOptions{}); err == nil {
			t.Error("Job should be deleted")
		}
		if _, err := clientset.CoreV1().ServiceAccounts(testNamespace).
			Get(ctx, "bondctl-collector", metav1.GetOptions{}); err == nil {
			t.Error("ServiceAccount should be deleted")
		}
	})

	t.Run("repeat cleanup is no-op", func(t *testing.T) {
		if err := deployer.Cleanup(ctx, []string{"worker-1"}, CleanupOptions{Enabled: true}); err != nil {
			t.Fatalf("second cleanup should be idempotent: %v", err)
		}
	})
}

func TestResourceNames(t *testing.T) {
	deployer := NewDeployer(fake.NewClientset(), testConfig())

	if got := deployer.JobName("worker-1"); got != "bondctl-collect-a1b2c3d4-worker-1" {
		t.Errorf("unexpected Job name: %q", got)
	}
	if got := deployer.ConfigMapName("Worker-1.example.com"); got != "bondctl-samples-a1b2c3d4-worker-1-example-com" {
		t.Errorf("unexpected ConfigMap name: %q", got)
	}
	if got := deployer.OutputURI("worker-1"); got != "cm://fleet/bondctl-samples-a1b2c3d4-worker-1" {
		t.Errorf("unexpected output URI: %q", got)
	}

	long := deployer.JobName(strings.Repeat("n", 100))
	if len(long) > 63 {
		t.Errorf("Job name exceeds DNS-1123 limit: %d chars", len(long))
	}
}
